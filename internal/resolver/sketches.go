package resolver

import (
	_ "embed"

	"github.com/tenxer/handnav/internal/classifier"
)

var (
	//go:embed sketches/thumb.ino
	thumbSketch string

	//go:embed sketches/amazing_hand_demo.ino
	amazingHandSketch string
)

// ReferenceSketches are attached to every code-generation request.
func ReferenceSketches() []classifier.ContextFile {
	return []classifier.ContextFile{
		{Name: "thumb.ino", Content: thumbSketch},
		{Name: "Amazing_Hand_Demo.ino", Content: amazingHandSketch},
	}
}
