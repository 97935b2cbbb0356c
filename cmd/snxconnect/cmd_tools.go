package main

import (
	"github.com/spf13/cobra"
)

var commandTools = &cobra.Command{
	Use:   "tools",
	Short: "Portal and handshake debugging tools",
}

func init() {
	mainCommand.AddCommand(commandTools)
}
