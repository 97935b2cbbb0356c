package portal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	E "github.com/sagernet/sing/common/exceptions"

	"golang.org/x/term"
)

// Prompter asks the user for values the configuration left out.
type Prompter interface {
	Prompt(label string) (string, error)
	PromptSecret(label string) (string, error)
}

type TerminalPrompter struct {
	input  *os.File
	output io.Writer
	reader *bufio.Reader
}

func NewTerminalPrompter(input *os.File, output io.Writer) *TerminalPrompter {
	return &TerminalPrompter{
		input:  input,
		output: output,
		reader: bufio.NewReader(input),
	}
}

func (p *TerminalPrompter) Prompt(label string) (string, error) {
	fmt.Fprint(p.output, label, ": ")
	line, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", E.Cause(err, "read ", label)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *TerminalPrompter) PromptSecret(label string) (string, error) {
	fd := int(p.input.Fd())
	if !term.IsTerminal(fd) {
		return p.Prompt(label)
	}
	fmt.Fprint(p.output, label, ": ")
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(p.output)
	if err != nil {
		return "", E.Cause(err, "read ", label)
	}
	return string(secret), nil
}
