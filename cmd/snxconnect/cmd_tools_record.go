package main

import (
	"io"
	"os"
	"strconv"

	"github.com/snxvpn/snxconnect/log"
	"github.com/snxvpn/snxconnect/snx"

	E "github.com/sagernet/sing/common/exceptions"

	"github.com/spf13/cobra"
)

var commandRecord = &cobra.Command{
	Use:   "record <file>",
	Short: "Decode a handshake record, \"-\" reads stdin",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := decodeRecord(args[0])
		if err != nil {
			log.Fatal(err)
		}
	},
}

var showPassword bool

func init() {
	commandRecord.Flags().BoolVar(&showPassword, "show-password", false, "print the password field")
	commandTools.AddCommand(commandRecord)
}

func decodeRecord(path string) error {
	var (
		content []byte
		err     error
	)
	if path == "-" {
		content, err = io.ReadAll(os.Stdin)
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return E.Cause(err, "read record")
	}
	record, err := snx.DecodeRecord(content)
	if err != nil {
		return err
	}
	password := "***"
	if showPassword {
		password = record.PasswordField()
	}
	for _, line := range [][2]string{
		{"length", "0x" + strconv.FormatUint(uint64(record.Length), 16)},
		{"gateway", record.Gateway().String()},
		{"host", record.Host()},
		{"port", strconv.FormatUint(uint64(record.Port), 10)},
		{"server_cn", record.CommonName()},
		{"user_name", record.User()},
		{"password", password},
		{"fingerprint", record.ServerFingerprint()},
	} {
		os.Stdout.WriteString(line[0] + ": " + line[1] + "\n")
	}
	return nil
}
