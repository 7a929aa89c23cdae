package menu

import (
	"bufio"
	"io"
	"strings"
)

// Prompter asks a question and blocks until a line of input is available.
// It returns io.EOF once input is exhausted.
type Prompter interface {
	Prompt(question string) (string, error)
}

// LinePrompter reads answers line by line from a reader, typically stdin.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter writes questions to out and reads answers from in.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// Prompt implements Prompter. The trailing newline is stripped; a final line
// without a newline is still returned.
func (p *LinePrompter) Prompt(question string) (string, error) {
	if _, err := io.WriteString(p.out, question); err != nil {
		return "", err
	}
	line, err := p.in.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
