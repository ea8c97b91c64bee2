package backend

import (
	"context"
	"strings"
)

// titleWords is how many leading words of the first prompt become the chat title.
const titleWords = 4

// SynthesizeTitle derives a short chat title from a prompt without any network call:
// the first four words, with "..." appended when the prompt had more.
func SynthesizeTitle(prompt string) string {
	words := strings.Split(prompt, " ")
	if len(words) <= titleWords {
		return prompt
	}
	return strings.Join(words[:titleWords], " ") + "..."
}

// TitleFunc adapts a plain function to a context-aware title synthesizer.
type TitleFunc func(prompt string) string

// SynthesizeTitle calls f. It never fails.
func (f TitleFunc) SynthesizeTitle(_ context.Context, prompt string) (string, error) {
	return f(prompt), nil
}
