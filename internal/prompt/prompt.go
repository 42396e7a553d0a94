// Package prompt reads interactive input from the terminal.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/jrschumacher/fxa-oauth/internal/validation"
	"golang.org/x/term"
)

var (
	// ErrRequired is returned when a required value was left blank.
	ErrRequired = errors.New("value is required")
)

// Prompter asks questions on out and reads answers from in.
type Prompter struct {
	in  io.Reader
	out io.Writer

	isTerminal   func() bool
	readPassword func() ([]byte, error)

	once   sync.Once
	reader *bufio.Reader
}

// stdin returns the file descriptor for stdin as an int.
func stdin() int { return int(os.Stdin.Fd()) } //nolint:gosec // fd fits in an int

// New returns a Prompter on the process stdin, writing prompts to stderr.
func New() *Prompter {
	return &Prompter{
		in:           os.Stdin,
		out:          os.Stderr,
		isTerminal:   func() bool { return term.IsTerminal(stdin()) },
		readPassword: func() ([]byte, error) { return term.ReadPassword(stdin()) },
	}
}

// NewWithIO returns a Prompter that never treats in as a terminal.
func NewWithIO(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:           in,
		out:          out,
		isTerminal:   func() bool { return false },
		readPassword: func() ([]byte, error) { return nil, errors.New("not a terminal") },
	}
}

// Ask prompts for a plaintext value. A blank answer yields def.
func (p *Prompter) Ask(ctx context.Context, label, def string) (string, error) {
	text := label
	if def != "" {
		text = fmt.Sprintf("%s (%s)", label, def)
	}
	answer, err := p.readLine(ctx, text+": ")
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Required prompts for a value that must not be blank.
func (p *Prompter) Required(ctx context.Context, label string) (string, error) {
	answer, err := p.Ask(ctx, label, "")
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "", fmt.Errorf("%s: %w", label, ErrRequired)
	}
	return answer, nil
}

// Confirm asks a yes/no question. A blank answer yields def.
func (p *Prompter) Confirm(ctx context.Context, label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	answer, err := p.readLine(ctx, fmt.Sprintf("%s [%s]: ", label, hint))
	if err != nil {
		return false, err
	}
	if answer == "" {
		return def, nil
	}
	return validation.Truthy(answer), nil
}

// Password returns configured when set. Otherwise it reads a password,
// obscuring input when stdin is a terminal.
func (p *Prompter) Password(ctx context.Context, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	var password string
	if p.isTerminal() {
		if _, err := fmt.Fprint(p.out, "Password: "); err != nil {
			return "", fmt.Errorf("could not print prompt: %w", err)
		}
		raw, err := p.readPassword()
		if err != nil {
			return "", fmt.Errorf("could not read password: %w", err)
		}
		// ReadPassword swallows the typed newline
		if _, err := fmt.Fprint(p.out, "\n"); err != nil {
			return "", fmt.Errorf("could not print newline: %w", err)
		}
		password = string(raw)
	} else {
		line, err := p.readLine(ctx, "Password: ")
		if err != nil {
			return "", err
		}
		password = line
	}

	if password == "" {
		return "", fmt.Errorf("password: %w", ErrRequired)
	}
	return password, nil
}

// readLine prints label and reads one trimmed line. If ctx is cancelled it
// returns immediately and the read stays blocked in the background.
func (p *Prompter) readLine(ctx context.Context, label string) (string, error) {
	if _, err := fmt.Fprint(p.out, label); err != nil {
		return "", fmt.Errorf("could not print prompt: %w", err)
	}
	p.once.Do(func() { p.reader = bufio.NewReader(p.in) })

	type readResult struct {
		text string
		err  error
	}
	results := make(chan readResult, 1)
	go func() {
		text, err := p.reader.ReadString('\n')
		results <- readResult{text, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-results:
		// EOF ends the last line
		if r.err != nil && !errors.Is(r.err, io.EOF) {
			return "", fmt.Errorf("could not read input: %w", r.err)
		}
		return strings.TrimSpace(r.text), nil
	}
}
