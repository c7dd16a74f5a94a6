// Package intent holds the deterministic lexical tiers of prompt
// resolution: the local command matcher and the keyword gates that decide
// which classifier mode, if any, a prompt is sent to.
package intent

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/tenxer/handnav/internal/command"
)

// rule maps a keyword set to a fixed command. next, home and exit match as
// word prefixes ("homepage", "exiting"); back/prev stay whole words so
// "preview" does not read as "prev". Rules are evaluated in slice order
// and the first hit wins.
type rule struct {
	name     string
	keywords vocab
	build    func() *command.Command
	response string
}

var dotRef = regexp.MustCompile(`(?:dot|point)\s*(\d+)`)

var rules = []rule{
	{
		name:     "previous",
		keywords: wordsOf("back", "previous", "prev", "go back"),
		build:    func() *command.Command { return command.Navigate(command.TargetPrevious, nil) },
		response: "Going back.",
	},
	{
		name:     "next",
		keywords: anyOf{stemsOf("next"), wordsOf("forward")},
		build:    func() *command.Command { return command.Navigate(command.TargetNext, nil) },
		response: "Next page.",
	},
	{
		name:     "ruka",
		keywords: wordsOf("ruka", "rukka", "ruka hand"),
		build:    func() *command.Command { return command.Navigate(command.TargetRukaHand, command.Page(2)) },
		response: "Opening Ruka Hand page...",
	},
	{
		name:     "amazing",
		keywords: wordsOf("amazing hand", "open amazing", "go to amazing"),
		build:    func() *command.Command { return command.Navigate(command.TargetAmazingHand, command.Page(0)) },
		response: "Opening Amazing Hand...",
	},
	{
		name:     "interactive",
		keywords: wordsOf("interactive", "dots"),
		build:    func() *command.Command { return command.Navigate(command.TargetInteractiveHand, nil) },
		response: "Opening Interactive Hand...",
	},
	{
		name:     "home",
		keywords: stemsOf("home"),
		build:    func() *command.Command { return command.Navigate(command.TargetHome, command.Page(0)) },
		response: "Going home...",
	},
	{
		name:     "split",
		keywords: wordsOf("open editor", "split mode", "open code page"),
		build:    func() *command.Command { return command.Navigate(command.TargetSplit, nil) },
		response: "Opening split view...",
	},
	{
		name:     "exit",
		keywords: anyOf{stemsOf("exit"), wordsOf("close")},
		build:    func() *command.Command { return command.Navigate(command.TargetExit, nil) },
		response: "Exiting.",
	},
}

// Match runs the local rules against text. It returns nil when no rule
// fires. Numeric dot/point references are checked before any keyword
// bucket; among buckets the fixed order above is the tie-break.
func Match(text string) *command.Result {
	res, _ := MatchRule(text)
	return res
}

// MatchRule is Match plus the name of the rule that fired.
func MatchRule(text string) (*command.Result, string) {
	lower := normalize(text)
	if m := dotRef.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return &command.Result{
				Command:  command.Interact(fmt.Sprintf("dot-%d", n), nil),
				Response: fmt.Sprintf("Interacting with dot %d", n),
			}, "dot"
		}
	}
	for _, r := range rules {
		if r.keywords.any(lower) {
			return &command.Result{Command: r.build(), Response: r.response}, r.name
		}
	}
	return nil, ""
}
