package main

import (
	"os"

	"github.com/snxvpn/snxconnect/log"
	"github.com/snxvpn/snxconnect/portal"

	E "github.com/sagernet/sing/common/exceptions"

	"github.com/spf13/cobra"
)

var commandEncrypt = &cobra.Command{
	Use:   "encrypt <RSA script> [password]",
	Short: "Encrypt a password with the key from a portal RSA script",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		err := encrypt(args)
		if err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	commandTools.AddCommand(commandEncrypt)
}

func encrypt(args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return E.Cause(err, "read RSA script")
	}
	params, err := portal.NewHTMLExtractor().ParseRSAParams(content)
	if err != nil {
		return err
	}
	encoder, err := portal.NewPasswordEncoder(params)
	if err != nil {
		return err
	}
	var password string
	if len(args) > 1 {
		password = args[1]
	} else {
		password, err = portal.NewTerminalPrompter(os.Stdin, os.Stderr).PromptSecret("Password")
		if err != nil {
			return err
		}
	}
	encrypted, err := encoder.Encrypt(password)
	if err != nil {
		return err
	}
	_, err = os.Stdout.WriteString(encrypted + "\n")
	return err
}
