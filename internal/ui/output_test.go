package ui

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/tenxer/handnav/internal/classifier"
	"github.com/tenxer/handnav/internal/command"
	"github.com/tenxer/handnav/internal/protocol"
	"github.com/tenxer/handnav/internal/resolver"
)

func plain() (*OutputHandler, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewWriterOutput(&out, &errOut, false), &out, &errOut
}

func TestResolution(t *testing.T) {
	o, out, _ := plain()
	point := "point-0"
	o.Resolution(protocol.AskResult{
		Resolution: resolver.Resolution{
			Result: command.Result{
				Command:  command.Navigate(command.TargetRukaHand, nil),
				Response: "Opening Ruka hand",
			},
			Tier: resolver.TierLocal,
		},
		Context: command.NavigationContext{CurrentView: command.ViewAmazing, CurrentIndex: 2, SelectedPoint: &point},
	})

	want := "Opening Ruka hand (local)\n" +
		"⚡ navigate ruka-hand\n" +
		"context: view=amazing page=2 video=off point=point-0\n"
	if out.String() != want {
		t.Errorf("Resolution() =\n%q\nexpected\n%q", out.String(), want)
	}
}

func TestCommandWithOpenFile(t *testing.T) {
	o, out, _ := plain()
	cmd := command.Navigate(command.TargetSplit, nil)
	cmd.OpenFile = &command.OpenFile{Name: "generated_code.ino", Content: "int a;\nint b;", Language: "cpp"}
	o.Command(cmd)

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %q", out.String())
	}
	if lines[1] != "── generated_code.ino" || lines[2] != "  │ int a;" {
		t.Errorf("unexpected code block %q", lines)
	}
}

func TestAnalysis(t *testing.T) {
	o, out, errOut := plain()
	a := classifier.Analysis{
		Action:     "navigate",
		Target:     "home",
		Confidence: 85,
		Reasoning:  "user wants home",
		Response:   "Going home",
	}
	o.Analysis(a, a.Command(classifier.DirectConfidence))
	if !strings.Contains(out.String(), "confidence: 85") || !strings.Contains(out.String(), "⚡ navigate home") {
		t.Errorf("unexpected analysis output %q", out.String())
	}
	if errOut.Len() != 0 {
		t.Errorf("unexpected stderr %q", errOut.String())
	}

	out.Reset()
	o.Analysis(classifier.Analysis{Action: "info", Confidence: 0, Err: errors.New("boom")},
		&command.Command{Action: command.ActionInfo, Target: "general"})
	if !strings.Contains(out.String(), "no command at confidence >= 60") {
		t.Errorf("expected threshold note, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "boom") {
		t.Errorf("expected warning, got %q", errOut.String())
	}
}

func TestReadLine(t *testing.T) {
	o := NewWriterOutput(io.Discard, io.Discard, false)
	in := NewReaderInput(strings.NewReader("  next page \nhome"), o)

	line, err := in.ReadLine("> ")
	if err != nil || line != "next page" {
		t.Fatalf("ReadLine() = %q, %v", line, err)
	}
	line, err = in.ReadLine("> ")
	if err != nil || line != "home" {
		t.Fatalf("ReadLine() = %q, %v", line, err)
	}
	if _, err = in.ReadLine("> "); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}
