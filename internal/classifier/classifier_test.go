package classifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenxer/handnav/internal/command"
	"github.com/tenxer/handnav/internal/config"
	hnerr "github.com/tenxer/handnav/internal/errors"
	"github.com/tenxer/handnav/internal/llm"
)

func testConfig() config.ClassifierConfig {
	return config.ClassifierConfig{Timeout: time.Second, CacheSize: 8, CacheTTL: time.Minute}
}

func initialContext() command.NavigationContext {
	return command.NavigationContext{CurrentView: command.ViewAmazing}
}

func TestClassifyIntent_EmbedsContext(t *testing.T) {
	mock := llm.NewMockReplying(`{"action":"navigate","target":"home","confidence":91,"reasoning":"r","response":"ok"}`)
	c := New(mock, testConfig())

	point := "point-2"
	nav := command.NavigationContext{CurrentView: command.ViewSplit, CurrentIndex: 3, SelectedPoint: &point}
	a := c.ClassifyIntent(context.Background(), "take me home", nav)

	assert.Equal(t, command.ActionNavigate, a.Action)
	assert.Equal(t, 91, a.Confidence)

	call := mock.LastCall()
	assert.Contains(t, call.SystemPrompt, "Current view: split")
	assert.Contains(t, call.SystemPrompt, "Current page index: 3")
	assert.Contains(t, call.SystemPrompt, "Selected point: point-2")
	assert.Contains(t, call.SystemPrompt, `"interactive-hand"`)
	require.Len(t, call.Messages, 1)
	assert.Contains(t, call.Messages[0].Content, "take me home")
}

func TestClassifyIntent_TransportFailure(t *testing.T) {
	c := New(llm.NewMockFailing(errors.New("connection reset")), testConfig())

	a := c.ClassifyIntent(context.Background(), "go to page", initialContext())
	assert.Equal(t, command.ActionInfo, a.Action)
	assert.Equal(t, 0, a.Confidence)
	assert.Equal(t, AnalysisErrorResponse, a.Response)
}

func TestClassifyIntent_ChangeRephrase(t *testing.T) {
	mock := llm.NewMockReplying(`{"action":"navigate","target":"split","confidence":80,"response":"editor"}`)
	c := New(mock, testConfig())

	a := c.ClassifyIntent(context.Background(), "how do I modify the hand", initialContext())
	assert.Equal(t, ChangeResponse, a.Response)
}

func TestClassifyIntent_Unconfigured(t *testing.T) {
	c := New(nil, testConfig())
	assert.False(t, c.Configured())

	a := c.ClassifyIntent(context.Background(), "anything", initialContext())
	assert.Equal(t, 0, a.Confidence)
	assert.Equal(t, GeneralErrorResponse, c.AnswerGeneral(context.Background(), "hi"))

	_, err := c.AnswerCodeOnly(context.Background(), "servo")
	assert.True(t, errors.Is(err, hnerr.ClassifierNotConfigured()))
}

func TestClassifyIntent_Timeout(t *testing.T) {
	mock := llm.NewMockLLMClient()
	mock.ChatFunc = func(ctx context.Context, messages []llm.Message, systemPrompt string) (*llm.Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	c := New(mock, config.ClassifierConfig{Timeout: 20 * time.Millisecond})

	start := time.Now()
	a := c.ClassifyIntent(context.Background(), "hang", initialContext())
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 0, a.Confidence)

	_, err := c.AnswerCodeOnly(context.Background(), "servo code")
	assert.Equal(t, "llm_timeout", hnerr.GetCode(errors.Unwrap(err)))
}

func TestParseNavigationIntent(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		wantAction command.Action
		wantTarget string
	}{
		{"above threshold", `{"action":"navigate","target":"home","confidence":60,"response":"r"}`, command.ActionNavigate, "home"},
		{"below threshold", `{"action":"navigate","target":"home","confidence":59,"response":"r"}`, command.ActionInfo, "general"},
		{"interact", `{"action":"interact","target":"dot-1","confidence":75,"response":"r"}`, command.ActionInteract, "dot-1"},
		{"no target", `{"action":"navigate","confidence":95,"response":"r"}`, command.ActionInfo, "general"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(llm.NewMockReplying(tt.reply), testConfig())
			cmd, a := c.ParseNavigationIntent(context.Background(), "x", initialContext())
			require.NotNil(t, cmd)
			assert.Equal(t, "r", a.Response)
			assert.Equal(t, tt.wantAction, cmd.Action)
			assert.Equal(t, tt.wantTarget, cmd.Target)
			assert.Equal(t, "r", cmd.Parameters["response"])
		})
	}
}

func TestAnswerGeneral_Cache(t *testing.T) {
	mock := llm.NewMockReplying("  Servos are motors.  ")
	c := New(mock, testConfig())

	first := c.AnswerGeneral(context.Background(), "What is a servo")
	second := c.AnswerGeneral(context.Background(), "what is a servo ")
	assert.Equal(t, "Servos are motors.", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, mock.CallCount())

	c.AnswerGeneral(context.Background(), "what is a servo", ContextFile{Name: "a.ino", Content: "x"})
	assert.Equal(t, 2, mock.CallCount(), "answers with context files bypass the cache")
	assert.Contains(t, mock.LastCall().SystemPrompt, "Filename: a.ino")
}

func TestAnswerGeneral_FailureNotCached(t *testing.T) {
	mock := llm.NewMockFailing(errors.New("down"))
	c := New(mock, testConfig())

	assert.Equal(t, GeneralErrorResponse, c.AnswerGeneral(context.Background(), "why"))
	assert.Equal(t, GeneralErrorResponse, c.AnswerGeneral(context.Background(), "why"))
	assert.Equal(t, 2, mock.CallCount())
}

func TestAnswerCodeOnly(t *testing.T) {
	mock := llm.NewMockReplying("```cpp\n#include <Servo.h>\nvoid setup() {}\n```")
	c := New(mock, testConfig())

	code, err := c.AnswerCodeOnly(context.Background(), "servo code",
		ContextFile{Name: "thumb.ino", Content: "// thumb"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, "#include <Servo.h>"))
	assert.Contains(t, mock.LastCall().SystemPrompt, "Filename: thumb.ino")
	assert.Contains(t, mock.LastCall().Messages[0].Content, "generate code only")
}

func TestAnswerCodeOnly_Failure(t *testing.T) {
	c := New(llm.NewMockFailing(hnerr.LLMRateLimited(errors.New("429"))), testConfig())

	_, err := c.AnswerCodeOnly(context.Background(), "servo code")
	require.Error(t, err)
	assert.Equal(t, "code_generation_failed", hnerr.GetCode(err))
	assert.True(t, hnerr.IsRetryable(err))
}

func TestAnswer_ReportsErrors(t *testing.T) {
	c := New(llm.NewMockReplying("   "), testConfig())
	_, err := c.Answer(context.Background(), "hello")
	assert.Equal(t, "llm_empty_response", hnerr.GetCode(err))

	c = New(llm.NewMockFailing(errors.New("down")), testConfig())
	a := c.ClassifyIntent(context.Background(), "x", initialContext())
	assert.Error(t, a.Err)
}
