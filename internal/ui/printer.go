// Package ui prints progress lines and tables to the console.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Line prefixes.
const (
	InfoPrefix    = "[*]"
	SuccessPrefix = "[+]"
	SkipPrefix    = "[-]"
	ErrorPrefix   = "[!]"
	DonePrefix    = "[✓]"
)

// Printer writes prefixed status lines.
type Printer struct {
	w      io.Writer
	styled bool

	info    lipgloss.Style
	success lipgloss.Style
	skip    lipgloss.Style
	fail    lipgloss.Style
	done    lipgloss.Style
}

// NewPrinter returns a Printer that colours prefixes when w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		styled:  true,
		info:    r.NewStyle().Foreground(lipgloss.Color("12")),
		success: r.NewStyle().Foreground(lipgloss.Color("10")),
		skip:    r.NewStyle().Foreground(lipgloss.Color("8")),
		fail:    r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		done:    r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
	}
}

// NewPlainPrinter returns a Printer that never styles its output.
func NewPlainPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Writer is the underlying output.
func (p *Printer) Writer() io.Writer {
	return p.w
}

func (p *Printer) Infof(format string, args ...any) {
	p.line(p.info, InfoPrefix, format, args...)
}

func (p *Printer) Successf(format string, args ...any) {
	p.line(p.success, SuccessPrefix, format, args...)
}

func (p *Printer) Skipf(format string, args ...any) {
	p.line(p.skip, SkipPrefix, format, args...)
}

func (p *Printer) Errorf(format string, args ...any) {
	p.line(p.fail, ErrorPrefix, format, args...)
}

func (p *Printer) Donef(format string, args ...any) {
	p.line(p.done, DonePrefix, format, args...)
}

// Blank prints an empty line.
func (p *Printer) Blank() {
	fmt.Fprintln(p.w)
}

func (p *Printer) line(style lipgloss.Style, prefix, format string, args ...any) {
	if p.styled {
		prefix = style.Render(prefix)
	}
	fmt.Fprintf(p.w, "%s %s\n", prefix, fmt.Sprintf(format, args...))
}
