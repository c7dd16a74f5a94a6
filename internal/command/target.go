package command

import (
	"regexp"
	"strconv"
	"strings"

	hnerr "github.com/tenxer/handnav/internal/errors"
)

// Target is a navigation destination.
type Target string

const (
	TargetRukaHand        Target = "ruka-hand"
	TargetAmazingHand     Target = "amazing-hand"
	TargetInteractiveHand Target = "interactive-hand"
	TargetNext            Target = "next"
	TargetPrevious        Target = "previous"
	TargetHome            Target = "home"
	TargetExit            Target = "exit"
	TargetSplit           Target = "split"
)

// Targets lists every navigation target in catalog order.
var Targets = []Target{
	TargetRukaHand,
	TargetAmazingHand,
	TargetInteractiveHand,
	TargetNext,
	TargetPrevious,
	TargetHome,
	TargetExit,
	TargetSplit,
}

var targetSynonyms = map[string]Target{
	"back":                 TargetPrevious,
	"prev":                 TargetPrevious,
	"video":                TargetHome,
	"video-only":           TargetHome,
	"live-video":           TargetHome,
	"code":                 TargetSplit,
	"editor":               TargetSplit,
	"landing":              TargetInteractiveHand,
	"amazing-hand-preview": TargetAmazingHand,
}

var spaceRun = regexp.MustCompile(`[\s_]+`)

// ParseTarget normalizes a target name and its synonyms.
func ParseTarget(s string) (Target, error) {
	norm := spaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	for _, t := range Targets {
		if Target(norm) == t {
			return t, nil
		}
	}
	if t, ok := targetSynonyms[norm]; ok {
		return t, nil
	}
	return "", hnerr.UnknownTarget(s)
}

// InteractionKind distinguishes point clicks from editor writes.
type InteractionKind int

const (
	InteractPoint InteractionKind = iota
	InteractSetFileContent
)

// SetFileContentTarget writes a named file into the editor.
const SetFileContentTarget = "editor:setFileContent"

// Interaction is a parsed interact target.
type Interaction struct {
	Kind     InteractionKind
	Point    int
	FileName string
	Content  string
}

// PointID is the selected-point identifier for a point interaction.
func (i Interaction) PointID() string {
	return "point-" + strconv.Itoa(i.Point)
}

var pointTarget = regexp.MustCompile(`^(?:dot|point)-(\d+)$`)

// ParseInteraction decodes dot-N, point-N and editor:setFileContent.
func ParseInteraction(target string, params map[string]any) (Interaction, error) {
	if target == SetFileContentTarget {
		name, _ := StringParam(params, "fileName")
		content, _ := StringParam(params, "content")
		if name == "" {
			return Interaction{}, hnerr.InvalidParams("editor:setFileContent requires fileName")
		}
		return Interaction{Kind: InteractSetFileContent, FileName: name, Content: content}, nil
	}
	m := pointTarget.FindStringSubmatch(strings.ToLower(strings.TrimSpace(target)))
	if m == nil {
		return Interaction{}, hnerr.UnknownTarget(target)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return Interaction{}, hnerr.UnknownTarget(target)
	}
	return Interaction{Kind: InteractPoint, Point: n}, nil
}
