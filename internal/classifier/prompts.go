package classifier

import (
	"fmt"
	"strings"

	"github.com/tenxer/handnav/internal/command"
)

const analysisPromptTemplate = `You are an intelligent navigation assistant for a robotic hand interface called TenXer.

CURRENT CONTEXT:
- Current view: %s
- Current page index: %d (0=Ruka Hand (first), 1=Ruka Hand (second), 2=Amazing Hand Preview, 3=Interactive Hand with dots)
- Video playing: %t
- Selected point: %s

AVAILABLE NAVIGATION TARGETS:
%s

INTERACTION TARGETS:
- "dot-1", "dot-2", "point-1", "point-2", etc.: Click specific dots on interactive hand

SPECIAL HANDLING:
- If user asks about MAKING CHANGES/EDITING the hand: navigate to "split" and explain they need the code editor
- If user wants to go to specific hand pages: provide an encouraging response and navigate there

YOUR TASK: Analyze the user's prompt and determine:
1. What ACTION they want: "navigate", "interact", or "info"
2. What TARGET (if navigation/interaction)
3. Your CONFIDENCE level (0-100)
4. Your REASONING for this decision
5. A helpful RESPONSE to the user

Understand different ways people express the same intent:
- "How do I change this hand?", "edit the hand", "modify movements" -> navigate to "split"
- "show ruka hand", "go to ruka", "ruka page", "first page" -> navigate to "ruka-hand" with parameters.page=0
- "interactive", "dots", "landing" -> navigate to "interactive-hand"
- "open code", "split mode", "editor" -> navigate to "split"

Return ONLY valid JSON with this exact structure:
{
  "action": "navigate",
  "target": "split",
  "confidence": 95,
  "reasoning": "User wants to make changes to the hand, which requires the code editor",
  "response": "To make changes to the hand, you'll need the code editor. Opening split mode now!"
}`

var targetHelp = map[command.Target]string{
	command.TargetRukaHand:        "page 0 or 1 via parameters.page: shows the Ruka Hand image",
	command.TargetAmazingHand:     "page 2: shows the Amazing Hand preview image",
	command.TargetInteractiveHand: "page 3: shows the interactive hand with clickable dots",
	command.TargetSplit:           "open split mode (hand + code editor), use when users want to make changes, edit, or code",
	command.TargetNext:            "move to next page",
	command.TargetPrevious:        "move to previous page",
	command.TargetHome:            "toggle video mode",
	command.TargetExit:            "exit current view",
}

func analysisPrompt(ctx command.NavigationContext) string {
	var targets strings.Builder
	for _, t := range command.Targets {
		fmt.Fprintf(&targets, "- %q: %s\n", t, targetHelp[t])
	}
	return fmt.Sprintf(analysisPromptTemplate,
		ctx.CurrentView,
		ctx.CurrentIndex,
		ctx.VideoPlaying,
		ctx.SelectedPointOr("none"),
		strings.TrimRight(targets.String(), "\n"),
	)
}

const generalPromptTemplate = `You are a helpful, natural, conversational AI assistant.
Answer every question in a friendly, intelligent, and easy-to-understand way.
Do NOT enforce any coding rules or special styles.
Use context files only if relevant.

Context:
%s`

const codePromptTemplate = `You are a code-generation assistant. When asked, return ONLY the requested source code and nothing else
(no explanation, no commentary, no markdown, no code fences).
If you include code fences, the caller will strip them, so prefer raw code text.
If the user asked for Arduino (.ino) or servo control code, produce valid, runnable Arduino code.
Use the provided context files only as reference.
Context:
%s`

func renderContext(files []ContextFile, empty string) string {
	if len(files) == 0 {
		return empty
	}
	parts := make([]string, 0, len(files))
	for _, f := range files {
		parts = append(parts, fmt.Sprintf("---\nFilename: %s\nContent:\n%s\n---", f.Name, f.Content))
	}
	return strings.Join(parts, "\n\n")
}

func generalPrompt(files []ContextFile) string {
	return fmt.Sprintf(generalPromptTemplate, renderContext(files, "No context provided."))
}

func codePrompt(files []ContextFile) string {
	return fmt.Sprintf(codePromptTemplate, renderContext(files, "No context provided"))
}
