package main

import (
	"os"

	"github.com/snxvpn/snxconnect/log"

	"github.com/spf13/cobra"
)

var commandFetch = &cobra.Command{
	Use:   "fetch <path>...",
	Short: "Fetch portal paths with the saved cookies",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := fetch(args)
		if err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	commandTools.AddCommand(commandFetch)
}

func fetch(args []string) error {
	err := globalOptions.Validate()
	if err != nil {
		return err
	}
	jar, _ := loadCookies(globalCtx, globalOptions.Cookie.Path)
	transport, err := newTransport(globalOptions, jar)
	if err != nil {
		return err
	}
	defer transport.Close()
	for _, filePart := range args {
		page, err := transport.Fetch(globalCtx, filePart, nil)
		if err != nil {
			return err
		}
		globalLogger.InfoContext(globalCtx, "fetched ", page.Location())
		_, err = os.Stdout.Write(page.Content)
		if err != nil {
			return err
		}
	}
	return nil
}
