// Package highlight colors sketch code for the terminal editor pane.
package highlight

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// aliases maps editor language ids to chroma lexer names.
var aliases = map[string]string{
	"cpp":     "arduino",
	"c++":     "arduino",
	"ino":     "arduino",
	"arduino": "arduino",
	"py":      "python",
}

// Highlighter renders code with ANSI colors.
type Highlighter struct {
	enabled   bool
	formatter chroma.Formatter
	style     *chroma.Style
}

// New creates a Highlighter. A disabled one returns code unchanged.
func New(enabled bool) *Highlighter {
	return &Highlighter{
		enabled:   enabled,
		formatter: formatters.Get("terminal256"),
		style:     styles.Get("monokai"),
	}
}

// Highlight colors code written in language.
func (h *Highlighter) Highlight(code, language string) string {
	return h.render(code, lexerFor("", language))
}

// HighlightFile picks the lexer from the file name first, then language.
func (h *Highlighter) HighlightFile(name, code, language string) string {
	return h.render(code, lexerFor(name, language))
}

func (h *Highlighter) render(code string, lexer chroma.Lexer) string {
	if !h.enabled || code == "" {
		return code
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return code
	}
	return buf.String()
}

// LexerName reports which lexer would be used.
func LexerName(name, language string) string {
	return lexerFor(name, language).Config().Name
}

func lexerFor(name, language string) chroma.Lexer {
	if name != "" {
		if l := lexers.Match(name); l != nil {
			return l
		}
	}
	lang := strings.ToLower(strings.TrimSpace(language))
	if alias, ok := aliases[lang]; ok {
		lang = alias
	}
	if l := lexers.Get(lang); l != nil {
		return l
	}
	return lexers.Fallback
}

var codeBlockRegex = regexp.MustCompile("(?s)```(\\w*)\\n(.*?)```")

// HighlightMarkdownCodeBlocks colors fenced blocks in a reply and drops
// the fences.
func (h *Highlighter) HighlightMarkdownCodeBlocks(text string) string {
	if !h.enabled {
		return text
	}
	return codeBlockRegex.ReplaceAllStringFunc(text, func(match string) string {
		parts := codeBlockRegex.FindStringSubmatch(match)
		if len(parts) != 3 {
			return match
		}
		return h.Highlight(strings.TrimSuffix(parts[2], "\n"), parts[1])
	})
}
