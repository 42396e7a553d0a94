// Package output provides CLI output formatting utilities
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Format selects how command results are rendered.
type Format string

const (
	// FormatTable renders human readable tables and lines
	FormatTable Format = "table"
	// FormatJSON renders indented JSON
	FormatJSON Format = "json"
)

// ParseFormat parses a string into a Format
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return FormatTable, fmt.Errorf("invalid output format %q: must be table or json", s)
	}
}

// PrinterOptions configures the Printer
type PrinterOptions struct {
	Out    io.Writer
	Err    io.Writer
	Format Format
	Quiet  bool
	// NoColor disables colors regardless of the environment
	NoColor bool
}

// Printer writes results to stdout and messages to stderr
type Printer struct {
	out       io.Writer
	err       io.Writer
	format    Format
	useColors bool
	quiet     bool
}

// UseColors reports whether the environment allows colored output.
func UseColors() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return !color.NoColor
}

// NewPrinter creates a printer
func NewPrinter(opts PrinterOptions) *Printer {
	p := &Printer{
		out:       opts.Out,
		err:       opts.Err,
		format:    opts.Format,
		useColors: !opts.NoColor && UseColors(),
		quiet:     opts.Quiet,
	}
	if p.out == nil {
		p.out = os.Stdout
	}
	if p.err == nil {
		p.err = os.Stderr
	}
	if p.format == "" {
		p.format = FormatTable
	}
	return p
}

// Format returns the result format
func (p *Printer) Format() Format {
	return p.format
}

// Result prints a command result to stdout. It is never suppressed.
func (p *Printer) Result(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// JSON prints v as indented JSON to stdout
func (p *Printer) JSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// Success prints a success message
func (p *Printer) Success(format string, args ...interface{}) {
	if p.quiet {
		return
	}
	if p.useColors {
		color.New(color.FgGreen).Fprintf(p.err, "✓ "+format+"\n", args...)
	} else {
		fmt.Fprintf(p.err, "[OK] "+format+"\n", args...)
	}
}

// Warning prints a warning message
func (p *Printer) Warning(format string, args ...interface{}) {
	if p.quiet {
		return
	}
	if p.useColors {
		color.New(color.FgYellow).Fprintf(p.err, "⚠ "+format+"\n", args...)
	} else {
		fmt.Fprintf(p.err, "[WARN] "+format+"\n", args...)
	}
}

// Header prints a section header
func (p *Printer) Header(title string) {
	if p.quiet {
		return
	}
	if p.useColors {
		color.New(color.FgWhite, color.Bold).Fprintf(p.err, "\n%s\n", title)
		color.New(color.FgWhite).Fprintf(p.err, "%s\n", repeatChar('─', len(title)))
	} else {
		fmt.Fprintf(p.err, "\n%s\n%s\n", title, repeatChar('-', len(title)))
	}
}

// Bold returns text in bold
func (p *Printer) Bold(text string) string {
	if p.useColors {
		return color.New(color.Bold).Sprint(text)
	}
	return text
}

func repeatChar(char rune, count int) string {
	result := make([]rune, count)
	for i := range result {
		result[i] = char
	}
	return string(result)
}
