// Package ui prints resolver results for the one-shot commands and the
// line-mode chat used when no terminal is attached.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tenxer/handnav/internal/classifier"
	"github.com/tenxer/handnav/internal/command"
	"github.com/tenxer/handnav/internal/protocol"
	"github.com/tenxer/handnav/internal/ui/highlight"
)

// ANSI color codes
const (
	Reset     = "\033[0m"
	Bold      = "\033[1m"
	Dim       = "\033[2m"
	Italic    = "\033[3m"
	Underline = "\033[4m"

	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
)

// ANSI cursor control codes
const (
	CursorStart = "\r"
	ClearLine   = "\033[2K"
)

// OutputHandler handles console output with colors
type OutputHandler struct {
	out         io.Writer
	errOut      io.Writer
	useColors   bool
	highlighter *highlight.Highlighter
}

// NewOutputHandler writes to stdout and stderr, with colors when stdout
// is a terminal and NO_COLOR is unset.
func NewOutputHandler() *OutputHandler {
	useColors := os.Getenv("NO_COLOR") == ""
	if fi, err := os.Stdout.Stat(); err != nil || fi.Mode()&os.ModeCharDevice == 0 {
		useColors = false
	}
	return NewWriterOutput(os.Stdout, os.Stderr, useColors)
}

// NewWriterOutput writes to the given writers.
func NewWriterOutput(out, errOut io.Writer, useColors bool) *OutputHandler {
	return &OutputHandler{
		out:         out,
		errOut:      errOut,
		useColors:   useColors,
		highlighter: highlight.New(useColors),
	}
}

func (o *OutputHandler) color(color, text string) string {
	if !o.useColors {
		return text
	}
	return color + text + Reset
}

// IsTTY returns true if colors (and so a terminal) are in use
func (o *OutputHandler) IsTTY() bool {
	return o.useColors
}

// UseColors returns true if colors are enabled
func (o *OutputHandler) UseColors() bool {
	return o.useColors
}

// TextLn outputs regular text with newline
func (o *OutputHandler) TextLn(text string) {
	fmt.Fprintln(o.out, text)
}

// Error outputs an error message
func (o *OutputHandler) Error(err error) {
	fmt.Fprintln(o.errOut, o.color(Red+Bold, "Error: ")+err.Error())
}

// Warning outputs a warning message
func (o *OutputHandler) Warning(msg string) {
	fmt.Fprintln(o.errOut, o.color(Yellow+Bold, "Warning: ")+msg)
}

// Success outputs a success message
func (o *OutputHandler) Success(msg string) {
	fmt.Fprintln(o.out, o.color(Green+Bold, "✓ ")+msg)
}

// Info outputs an info message
func (o *OutputHandler) Info(msg string) {
	fmt.Fprintln(o.out, o.color(Blue, "ℹ ")+msg)
}

// Prompt outputs a prompt without newline
func (o *OutputHandler) Prompt(prompt string) {
	fmt.Fprint(o.out, o.color(Bold+Green, prompt))
}

// Header outputs a header
func (o *OutputHandler) Header(text string) {
	fmt.Fprintln(o.out, o.color(Bold+Underline, text))
}

// ModelInfo outputs the current model info
func (o *OutputHandler) ModelInfo(model string) {
	fmt.Fprintln(o.out, o.color(Dim, "Using model: ")+o.color(Cyan, model))
}

// Command prints an applied command, or nothing for nil.
func (o *OutputHandler) Command(cmd *command.Command) {
	if cmd == nil {
		return
	}
	line := o.color(Cyan+Bold, "⚡ ") + o.color(Cyan, cmd.String())
	if len(cmd.Parameters) > 0 {
		data, _ := json.Marshal(cmd.Parameters)
		line += o.color(Dim, " "+string(data))
	}
	fmt.Fprintln(o.out, line)
	if f := cmd.OpenFile; f != nil {
		o.Code(f.Name, f.Content, f.Language)
	}
}

// Code prints a highlighted file body with a gutter.
func (o *OutputHandler) Code(name, code, language string) {
	fmt.Fprintln(o.out, o.color(Dim, "── ")+o.color(Bold, name))
	for _, line := range strings.Split(o.highlighter.HighlightFile(name, code, language), "\n") {
		fmt.Fprintln(o.out, o.color(Dim, "  │ ")+line)
	}
}

// Context prints a navigation context on one line.
func (o *OutputHandler) Context(ctx command.NavigationContext) {
	video := "off"
	if ctx.VideoPlaying {
		video = "on"
	}
	fmt.Fprintf(o.out, "%s view=%s page=%d video=%s point=%s\n",
		o.color(Dim, "context:"), ctx.CurrentView, ctx.CurrentIndex, video, ctx.SelectedPointOr("none"))
}

// Resolution prints a resolved prompt: reply, command and new context.
func (o *OutputHandler) Resolution(res protocol.AskResult) {
	fmt.Fprintln(o.out, o.highlighter.HighlightMarkdownCodeBlocks(res.Response)+" "+o.color(Dim+Italic, "("+string(res.Tier)+")"))
	o.Command(res.Command)
	o.Context(res.Context)
}

// Analysis prints a raw classifier analysis and the direct-path command
// derived from it. An info command means nothing cleared the threshold.
func (o *OutputHandler) Analysis(a classifier.Analysis, direct *command.Command) {
	fmt.Fprintf(o.out, "%s %s\n", o.color(Bold, "action:"), a.Action)
	if a.Target != "" {
		fmt.Fprintf(o.out, "%s %s\n", o.color(Bold, "target:"), a.Target)
	}
	if len(a.Parameters) > 0 {
		data, _ := json.Marshal(a.Parameters)
		fmt.Fprintf(o.out, "%s %s\n", o.color(Bold, "parameters:"), data)
	}
	fmt.Fprintf(o.out, "%s %d\n", o.color(Bold, "confidence:"), a.Confidence)
	fmt.Fprintf(o.out, "%s %s\n", o.color(Bold, "reasoning:"), a.Reasoning)
	fmt.Fprintf(o.out, "%s %s\n", o.color(Bold, "response:"), a.Response)
	if a.Err != nil {
		o.Warning(a.Err.Error())
	}
	if direct != nil && direct.Action != command.ActionInfo {
		o.Command(direct)
	} else {
		o.Info(fmt.Sprintf("no command at confidence >= %d", classifier.DirectConfidence))
	}
}
