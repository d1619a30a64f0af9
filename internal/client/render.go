package client

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Renderer writes user-facing output, colorized unless plain is set or
// stdout isn't a terminal. Grounded on
// original_source/rendering/renderers.py's Renderer, using
// github.com/fatih/color + github.com/mattn/go-isatty in place of
// Python's own ANSI-wrapping decorators.
type Renderer struct {
	plain bool
}

// NewRenderer builds a Renderer. plain forces uncolored output even on
// a terminal (the -p/--plain flag, spec.md §6).
func NewRenderer(plain bool) *Renderer {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		plain = true
	}
	return &Renderer{plain: plain}
}

// Normal prints unstyled output.
func (r *Renderer) Normal(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}

// Notice prints a cyan informational line.
func (r *Renderer) Notice(format string, args ...any) {
	r.printColored(color.FgCyan, format, args...)
}

// Success prints a green confirmation line.
func (r *Renderer) Success(format string, args ...any) {
	r.printColored(color.FgGreen, format, args...)
}

// Warning prints a yellow warning line.
func (r *Renderer) Warning(format string, args ...any) {
	r.printColored(color.FgYellow, format, args...)
}

// Error prints a red error line to stderr.
func (r *Renderer) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if r.plain {
		fmt.Fprintln(os.Stderr, msg)
		return
	}
	color.New(color.FgRed).Fprintln(os.Stderr, msg)
}

func (r *Renderer) printColored(attr color.Attribute, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if r.plain {
		fmt.Println(msg)
		return
	}
	color.New(attr).Println(msg)
}
