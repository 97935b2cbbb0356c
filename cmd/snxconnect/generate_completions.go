//go:build generate && generate_completions

package main

import "github.com/snxvpn/snxconnect/log"

func main() {
	err := generateCompletions()
	if err != nil {
		log.Fatal(err)
	}
}

func generateCompletions() error {
	err := mainCommand.GenBashCompletionFile("release/completions/snxconnect.bash")
	if err != nil {
		return err
	}
	err = mainCommand.GenFishCompletionFile("release/completions/snxconnect.fish", true)
	if err != nil {
		return err
	}
	return mainCommand.GenZshCompletionFile("release/completions/snxconnect.zsh")
}
