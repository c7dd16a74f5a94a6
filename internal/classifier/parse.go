package classifier

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tenxer/handnav/internal/command"
)

var thinkTags = regexp.MustCompile(`(?s)<think>.*?</think>`)

// stripThinkTags removes reasoning blocks some local models prepend.
func stripThinkTags(content string) string {
	return strings.TrimSpace(thinkTags.ReplaceAllString(content, ""))
}

// ExtractJSONObject returns the first balanced {...} object in s that is
// valid JSON, skipping braces inside string literals. Surrounding prose is
// ignored.
func ExtractJSONObject(s string) (string, bool) {
	for start := 0; start < len(s); start++ {
		if s[start] != '{' {
			continue
		}
		end, ok := balancedEnd(s, start)
		if !ok {
			continue
		}
		if candidate := s[start : end+1]; json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}
	return "", false
}

// balancedEnd finds the brace closing the one at s[start].
func balancedEnd(s string, start int) (int, bool) {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// rawAnalysis is the loose shape models actually return.
type rawAnalysis struct {
	Action     string         `json:"action"`
	Target     string         `json:"target"`
	Parameters map[string]any `json:"parameters"`
	Confidence *float64       `json:"confidence"`
	Reasoning  string         `json:"reasoning"`
	Response   string         `json:"response"`
}

const (
	parseFailureConfidence = 30
	missingConfidence      = 50
)

// ParseAnalysis turns raw model output into an Analysis. It never fails:
// output without a usable JSON object degrades to an info analysis at
// confidence 30 whose response is the raw text.
func ParseAnalysis(raw string) Analysis {
	text := stripThinkTags(raw)
	obj, ok := ExtractJSONObject(text)
	if !ok {
		return degradedParse(text)
	}
	var ra rawAnalysis
	if err := json.Unmarshal([]byte(obj), &ra); err != nil {
		return degradedParse(text)
	}

	a := Analysis{
		Action:     command.ActionInfo,
		Target:     strings.TrimSpace(ra.Target),
		Parameters: ra.Parameters,
		Confidence: missingConfidence,
		Reasoning:  firstNonEmpty(ra.Reasoning, "AI analysis performed"),
		Response:   firstNonEmpty(strings.TrimSpace(ra.Response), text),
	}
	if ra.Confidence != nil {
		a.Confidence = clampConfidence(*ra.Confidence)
	}
	if ra.Action != "" {
		if action, err := command.ParseAction(ra.Action); err == nil {
			a.Action = action
		} else if t, err := command.ParseTarget(ra.Action); err == nil {
			// "back", "next", "split" and friends arrive as actions;
			// they are navigation targets.
			a.Action = command.ActionNavigate
			if a.Target == "" {
				a.Target = string(t)
			}
		}
	}
	return a
}

func degradedParse(text string) Analysis {
	return Analysis{
		Action:     command.ActionInfo,
		Confidence: parseFailureConfidence,
		Reasoning:  "Failed to parse AI response as structured data",
		Response:   firstNonEmpty(text, "I analyzed your request but couldn't determine a specific action."),
	}
}

func clampConfidence(c float64) int {
	switch {
	case c < 0:
		return 0
	case c > 100:
		return 100
	default:
		return int(c)
	}
}

var (
	fencedBlock   = regexp.MustCompile("```(?:[a-zA-Z0-9_+-]*\\n)?([\\s\\S]*?)```")
	leadingFence  = regexp.MustCompile("(?i)^```[a-zA-Z0-9_+-]*\\s*")
	trailingFence = regexp.MustCompile("\\s*```$")
)

// StripCodeFences returns the body of the first fenced block, or the text
// with stray leading and trailing fence markers removed.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if m := fencedBlock.FindStringSubmatch(s); m != nil && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1])
	}
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
