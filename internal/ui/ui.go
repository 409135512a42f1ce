// Package ui provides the rendering surfaces the timer draws on. The host
// embeds the widget by supplying implementations of Display and Dialog;
// terminal implementations backed by pterm are included.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pterm/pterm"
)

// Display is a surface that shows a single line of text, typically the
// remaining time of a countdown. Implementations must tolerate being
// updated from a different goroutine than the one that created them.
type Display interface {
	SetText(text string)
}

// Dialog is a prompt that can be opened and closed, such as the wellness
// prompt shown before a focus period begins.
type Dialog interface {
	Open()
	Close()
	IsOpen() bool
}

// TermDisplay renders countdown text on a single terminal line, rewriting
// it in place on every update.
type TermDisplay struct {
	mu    sync.Mutex
	W     io.Writer
	Label string
}

func NewTermDisplay(label string) *TermDisplay {
	return &TermDisplay{W: os.Stdout, Label: label}
}

func (d *TermDisplay) SetText(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	w := d.W
	if w == nil {
		w = os.Stdout
	}

	fmt.Fprintf(w, "\r\033[K%s %s", Blue(d.Label), pterm.Yellow(text))
}

// TermDialog approximates a modal prompt in the terminal: opening prints the
// dialog body, closing prints a terminating line.
type TermDialog struct {
	mu    sync.Mutex
	open  bool
	W     io.Writer
	Title string
	Body  string
}

func NewTermDialog(title, body string) *TermDialog {
	return &TermDialog{W: os.Stdout, Title: title, Body: body}
}

func (d *TermDialog) Open() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.open {
		return
	}

	d.open = true

	w := d.W
	if w == nil {
		w = os.Stdout
	}

	fmt.Fprintf(w, "\n%s: %s\n", Highlight(d.Title), d.Body)
}

func (d *TermDialog) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return
	}

	d.open = false

	w := d.W
	if w == nil {
		w = os.Stdout
	}

	fmt.Fprint(w, "\n")
}

func (d *TermDialog) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.open
}
