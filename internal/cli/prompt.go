package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// isInteractive reports whether prompts can be answered on in.
// Replaced in tests.
var isInteractive = func(in io.Reader) bool {
	return isTerminal(in)
}

// prompter asks yes/no questions on a terminal
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// confirm asks question and returns true only for an explicit yes.
// End of input counts as no.
func (p *prompter) confirm(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", question)

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
