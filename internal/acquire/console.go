package acquire

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInputClosed is returned when standard input reaches EOF while a prompt
// is waiting for an answer.
var ErrInputClosed = errors.New("input closed")

// Prompter is the line-oriented I/O the acquisition loops talk to.
type Prompter interface {
	Say(format string, args ...any)
	ReadLine() (string, error)
}

// Console is a Prompter over a reader and a writer, normally stdin/stdout.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole creates a Console.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Say writes one line of output.
func (c *Console) Say(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// ReadLine reads up to and including the next newline. A final line without
// a newline is returned as is; EOF with nothing read is ErrInputClosed.
func (c *Console) ReadLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line != "" {
				return line, nil
			}
			return "", ErrInputClosed
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	return line, nil
}

// readLine reads and trims one answer. Read errors are reported and the read
// is retried; only cancellation and ErrInputClosed end the wait.
func readLine(ctx context.Context, p Prompter) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		line, err := p.ReadLine()
		if err == nil {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, ErrInputClosed) {
			return "", err
		}
		p.Say("Failed to read input: %v", err)
	}
}
