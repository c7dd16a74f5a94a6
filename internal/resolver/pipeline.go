// Package resolver turns free text into at most one command. Tiers run in
// a fixed order and the first one that applies answers the prompt:
// local match, code request, change request, information question,
// navigation phrasing, general fallback.
package resolver

import (
	"context"
	"time"

	"github.com/tenxer/handnav/internal/classifier"
	"github.com/tenxer/handnav/internal/command"
	hnerr "github.com/tenxer/handnav/internal/errors"
	"github.com/tenxer/handnav/internal/intent"
	"github.com/tenxer/handnav/internal/logging"
	"github.com/tenxer/handnav/internal/navigation"
)

// Tier names the pipeline stage that resolved a prompt.
type Tier string

const (
	TierLocal    Tier = "local"
	TierCode     Tier = "code"
	TierChange   Tier = "change"
	TierInfo     Tier = "info"
	TierNav      Tier = "nav"
	TierFallback Tier = "fallback"
)

// NavConfidence is the threshold on the navigation fallback path.
const NavConfidence = 50

// GeneratedFileName is the editor file code requests open into.
const GeneratedFileName = "generated_code.ino"

// Fixed responses.
const (
	CodeResponse        = "Here is the generated code for your request!"
	CodeErrorResponse   = "Sorry, I encountered an error generating the code."
	CodeErrorContent    = "// Error generating code. Please try again."
	ChangeResponse      = "Opening split mode so you can modify code."
	ChangeErrorResponse = "Opening split mode for editing."
	NotUnderstood       = "Sorry, I could not understand that."
)

// Resolution is a Result plus the tier that produced it.
type Resolution struct {
	command.Result
	Tier Tier `json:"tier"`
}

// Pipeline resolves prompts against a navigation binding.
type Pipeline struct {
	cls *classifier.Classifier
	nav navigation.Navigator
	log *logging.Logger
}

// New creates a pipeline. A nil nav leaves the pipeline unbound and every
// Process call fails with CallbacksUnbound.
func New(cls *classifier.Classifier, nav navigation.Navigator) *Pipeline {
	return &Pipeline{
		cls: cls,
		nav: nav,
		log: logging.Global().WithPrefix("resolver"),
	}
}

// Bound reports whether a navigation binding is attached.
func (p *Pipeline) Bound() bool {
	return p.nav != nil
}

// Process resolves prompt. It does not apply the command; callers pass
// it to the navigation adapter. The only error is an unbound pipeline.
func (p *Pipeline) Process(ctx context.Context, prompt string) (Resolution, error) {
	if p.nav == nil {
		return Resolution{}, hnerr.CallbacksUnbound()
	}
	start := time.Now()
	metrics := p.log.Metrics()
	metrics.RecordPrompt()

	res := p.resolve(ctx, prompt)
	if res.Response == "" {
		res.Response = "Command processed successfully."
	}

	metrics.RecordTier(string(res.Tier), time.Since(start), res.Command != nil)
	p.log.Debug("prompt resolved",
		logging.Tier(string(res.Tier)),
		logging.Query(prompt),
		logging.F("command", res.Command.String()),
		logging.DurationSince(start))
	return res, nil
}

func (p *Pipeline) resolve(ctx context.Context, prompt string) Resolution {
	if local := intent.Match(prompt); local != nil {
		return Resolution{Result: *local, Tier: TierLocal}
	}

	if intent.IsCodeIntent(prompt) {
		return p.generateCode(ctx, prompt)
	}

	if intent.WantsChange(prompt) {
		a := p.cls.ClassifyIntent(ctx, prompt, p.nav.Context())
		response := a.Response
		switch {
		case a.Err != nil:
			response = ChangeErrorResponse
		case response == "":
			response = ChangeResponse
		}
		return Resolution{
			Result: command.Result{Command: command.Navigate(command.TargetSplit, nil), Response: response},
			Tier:   TierChange,
		}
	}

	if intent.IsInformation(prompt) {
		return Resolution{
			Result: command.Result{Response: p.cls.AnswerGeneral(ctx, prompt)},
			Tier:   TierInfo,
		}
	}

	if intent.IsNavigation(prompt) {
		a := p.cls.ClassifyIntent(ctx, prompt, p.nav.Context())
		return Resolution{
			Result: command.Result{Command: a.Command(NavConfidence), Response: a.Response},
			Tier:   TierNav,
		}
	}

	answer, err := p.cls.Answer(ctx, prompt)
	if err != nil {
		p.log.Warn("fallback answer failed", logging.Query(prompt), logging.Error(err))
		answer = NotUnderstood
	}
	return Resolution{Result: command.Result{Response: answer}, Tier: TierFallback}
}

// generateCode always opens the editor, with the generated sketch or a
// placeholder when generation fails.
func (p *Pipeline) generateCode(ctx context.Context, prompt string) Resolution {
	open := &command.OpenFile{Name: GeneratedFileName, Language: navigation.DefaultLanguage}
	response := CodeResponse

	code, err := p.cls.AnswerCodeOnly(ctx, prompt, ReferenceSketches()...)
	if err != nil {
		p.log.Warn("code generation failed", logging.Query(prompt), logging.Error(err))
		open.Content = CodeErrorContent
		response = CodeErrorResponse
	} else {
		open.Content = code
	}

	cmd := command.Navigate(command.TargetSplit, nil)
	cmd.OpenFile = open
	return Resolution{Result: command.Result{Command: cmd, Response: response}, Tier: TierCode}
}
