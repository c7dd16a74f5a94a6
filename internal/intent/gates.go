package intent

var codeVocab = anyOf{
	wordsOf(
		"write code", "generate code", "create code", "code for", "code to",
		"arduino", "servo", "servos", "motor", "motors",
		"finger move", "move thumb", "move finger", "bend finger", "rotate finger",
		"control hand", "servo code", "motor code",
	),
	stemsOf("program"),
}

var (
	changeVerbs = substrings{"change", "edit", "modify", "customize", "update", "alter"}
	handNouns   = substrings{"hand", "finger", "joint", "movement", "robotic hand", "tenxer"}
)

var informationPhrases = substrings{
	"what is", "tell me about", "information about",
	"explain", "describe", "how does", "why",
}

var navigationPhrases = substrings{
	"go to", "open page", "navigate to", "show page", "switch page",
	"next page", "previous page", "home page", "exit page",
}

// changeTopics is wider than changeVerbs: it also treats questions about
// code or programming a hand as a request to edit it.
var changeTopics = substrings{"change", "edit", "modify", "customize", "update", "code", "programming"}

// IsCodeIntent reports whether the prompt asks for generated source code.
func IsCodeIntent(text string) bool {
	return codeVocab.any(normalize(text))
}

// WantsChange reports whether the prompt asks to modify the hand: a
// change verb together with a hand noun.
func WantsChange(text string) bool {
	lower := normalize(text)
	return changeVerbs.any(lower) && handNouns.any(lower)
}

// AsksAboutChanges is the looser change test used to rephrase classifier
// replies that already point at the editor.
func AsksAboutChanges(text string) bool {
	lower := normalize(text)
	return changeTopics.any(lower) && handNouns[:4].any(lower)
}

// IsInformation reports whether the prompt is phrased as a question.
func IsInformation(text string) bool {
	return informationPhrases.any(normalize(text))
}

// IsNavigation reports whether the prompt is phrased as navigation and
// not also as a question. Information takes precedence.
func IsNavigation(text string) bool {
	lower := normalize(text)
	return navigationPhrases.any(lower) && !informationPhrases.any(lower)
}
