package intent

import (
	"regexp"
	"strings"
)

// vocab is a keyword list tested against lower-cased input.
type vocab interface {
	any(lower string) bool
}

// substrings matches when any keyword occurs anywhere in the input.
type substrings []string

func (s substrings) any(lower string) bool {
	for _, k := range s {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// words matches whole words or phrases only, so "prev" does not fire
// on "preview" and "finger move" does not fire on "finger movement".
type words struct {
	re *regexp.Regexp
}

func wordsOf(keys ...string) words {
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return words{re: regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)}
}

func (w words) any(lower string) bool {
	return w.re.MatchString(lower)
}

// stems matches words starting with any of the keys ("program" matches
// "programming").
type stems struct {
	re *regexp.Regexp
}

func stemsOf(keys ...string) stems {
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return stems{re: regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)`)}
}

func (s stems) any(lower string) bool {
	return s.re.MatchString(lower)
}

type anyOf []vocab

func (a anyOf) any(lower string) bool {
	for _, v := range a {
		if v.any(lower) {
			return true
		}
	}
	return false
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
