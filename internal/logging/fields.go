package logging

import (
	"time"

	"go.uber.org/zap"
)

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// F creates a new Field with the given key and value.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// RequestID creates a request ID field.
func RequestID(id string) Field {
	return F("request_id", id)
}

// Duration creates a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return F("duration_ms", d.Milliseconds())
}

// DurationSince creates a duration field from a start time.
func DurationSince(start time.Time) Field {
	return Duration(time.Since(start))
}

// Model creates a model name field.
func Model(name string) Field {
	return F("model", name)
}

// Provider creates an LLM provider field.
func Provider(name string) Field {
	return F("provider", name)
}

// Tier creates a resolution tier field.
func Tier(tier string) Field {
	return F("tier", tier)
}

// Action creates a command action field.
func Action(a string) Field {
	return F("action", a)
}

// Target creates a command target field.
func Target(t string) Field {
	return F("target", t)
}

// Confidence creates a classifier confidence field.
func Confidence(c int) Field {
	return F("confidence", c)
}

// Method creates a protocol method field.
func Method(m string) Field {
	return F("method", m)
}

// Query creates a prompt field, truncating if too long.
func Query(q string) Field {
	if len(q) > 200 {
		q = q[:197] + "..."
	}
	return F("query", q)
}

// Path creates a file path field.
func Path(p string) Field {
	return F("path", p)
}

// Error creates an error field.
func Error(err error) Field {
	if err == nil {
		return F("error", nil)
	}
	return F("error", err.Error())
}

// Success creates a success boolean field.
func Success(ok bool) Field {
	return F("success", ok)
}

// Count creates a count field.
func Count(n int) Field {
	return F("count", n)
}

// From creates a "from" field for state transitions.
func From(value string) Field {
	return F("from", value)
}

// To creates a "to" field for state transitions.
func To(value string) Field {
	return F("to", value)
}

// Reason creates a reason field.
func Reason(r string) Field {
	return F("reason", r)
}

func toZap(fields []Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = zap.Any(f.Key, f.Value)
	}
	return out
}
