package ui

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prompter collects interactive answers. Every method blocks until the user
// responds; there are no timeouts.
type Prompter interface {
	// Confirm asks a y/n question and reports whether the user answered yes.
	Confirm(question string) (bool, error)

	// Input asks for a free-text value. An empty answer yields def.
	Input(question, def string) (string, error)

	// Int asks for an integer, re-prompting until the input parses.
	Int(question string) (int, error)
}

// TerminalPrompter reads line-oriented answers from In and writes prompts to
// Out.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

// NewTerminalPrompter returns a Prompter bound to the given streams.
func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{In: in, Out: out, reader: bufio.NewReader(in)}
}

func (p *TerminalPrompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read prompt answer: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *TerminalPrompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.Out, "%s [y/n]: ", question)
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (p *TerminalPrompter) Input(question, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.Out, "%s [%s]: ", question, def)
	} else {
		fmt.Fprintf(p.Out, "%s: ", question)
	}
	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(answer) == "" {
		return def, nil
	}
	return answer, nil
}

func (p *TerminalPrompter) Int(question string) (int, error) {
	for {
		fmt.Fprintf(p.Out, "%s: ", question)
		answer, err := p.readLine()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(answer))
		if err != nil {
			fmt.Fprintf(p.Out, "please enter a number\n")
			continue
		}
		return n, nil
	}
}
