package errors

import "fmt"

// LLMUnavailable creates an error for when the text-generation backend is unreachable.
func LLMUnavailable(cause error) *Error {
	return &Error{
		Category:  CategoryLLM,
		Code:      "llm_unavailable",
		Message:   "LLM service is unavailable",
		Retryable: true,
		Cause:     cause,
	}
}

// LLMRequestFailed creates an error for when an LLM request fails.
func LLMRequestFailed(cause error) *Error {
	return &Error{
		Category:  CategoryLLM,
		Code:      "llm_request_failed",
		Message:   "LLM request failed",
		Retryable: true,
		Cause:     cause,
	}
}

// LLMRateLimited creates an error for a 429 or quota response.
func LLMRateLimited(cause error) *Error {
	return &Error{
		Category:  CategoryLLM,
		Code:      "llm_rate_limited",
		Message:   "LLM rate limit reached",
		Retryable: true,
		Cause:     cause,
	}
}

// LLMTimeout creates an error for when an LLM request times out.
func LLMTimeout(cause error) *Error {
	return &Error{
		Category:  CategoryLLM,
		Code:      "llm_timeout",
		Message:   "LLM request timed out",
		Retryable: true,
		Cause:     cause,
	}
}

// LLMEmptyResponse creates an error for a reply without any text.
func LLMEmptyResponse() *Error {
	return &Error{
		Category: CategoryLLM,
		Code:     "llm_empty_response",
		Message:  "LLM returned an empty response",
	}
}

// ClassifierNotConfigured is returned when no backend was configured.
func ClassifierNotConfigured() *Error {
	return &Error{
		Category: CategoryClassifier,
		Code:     "classifier_not_configured",
		Message:  "AI classifier is not configured, set an API key",
	}
}

// CodeGenerationFailed wraps a failed code-only request.
func CodeGenerationFailed(cause error) *Error {
	return &Error{
		Category:  CategoryClassifier,
		Code:      "code_generation_failed",
		Message:   "code generation failed",
		Retryable: IsRetryable(cause),
		Cause:     cause,
	}
}

// CallbacksUnbound is returned when a navigation binding is required but absent.
func CallbacksUnbound() *Error {
	return &Error{
		Category: CategoryNavigation,
		Code:     "callbacks_unbound",
		Message:  "navigation callbacks not set",
	}
}

// UnknownTarget creates an error for a target outside the routing table.
func UnknownTarget(target string) *Error {
	return &Error{
		Category: CategoryNavigation,
		Code:     "unknown_target",
		Message:  fmt.Sprintf("unknown target %q", target),
	}
}

// InvalidParams creates a protocol error for malformed call arguments.
func InvalidParams(detail string) *Error {
	return &Error{
		Category: CategoryProtocol,
		Code:     "invalid_params",
		Message:  detail,
	}
}

// ConfigLoadFailed creates an error for when configuration loading fails.
func ConfigLoadFailed(path string, cause error) *Error {
	return &Error{
		Category: CategoryConfig,
		Code:     "config_load_failed",
		Message:  fmt.Sprintf("failed to load config from %q", path),
		Cause:    cause,
	}
}

// ConfigInvalid creates an error for a config that parsed but is unusable.
func ConfigInvalid(detail string) *Error {
	return &Error{
		Category: CategoryConfig,
		Code:     "config_invalid",
		Message:  detail,
	}
}

// StoreFailed wraps a persistence failure for a named file.
func StoreFailed(op, name string, cause error) *Error {
	return &Error{
		Category:  CategoryStore,
		Code:      "store_failed",
		Message:   fmt.Sprintf("%s %q failed", op, name),
		Retryable: IsRetryable(cause),
		Cause:     cause,
	}
}
