package ui

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// InputHandler reads prompts in line mode
type InputHandler struct {
	reader *bufio.Reader
	output *OutputHandler
}

// NewInputHandler reads from stdin
func NewInputHandler(output *OutputHandler) *InputHandler {
	return NewReaderInput(os.Stdin, output)
}

// NewReaderInput reads from r
func NewReaderInput(r io.Reader, output *OutputHandler) *InputHandler {
	return &InputHandler{reader: bufio.NewReader(r), output: output}
}

// ReadLine prints prompt and reads one trimmed line. The last line is
// returned even without a trailing newline; io.EOF follows.
func (h *InputHandler) ReadLine(prompt string) (string, error) {
	h.output.Prompt(prompt)
	line, err := h.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
