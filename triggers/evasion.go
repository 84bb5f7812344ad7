package triggers

import (
	"strings"
)

// Match is the result of scanning a message for evasion phrases
type Match struct {
	Matched bool
	Trigger string
}

type evasionPhrase struct {
	raw        string
	lowered    string
	normalized string
}

// EvasionMatcher finds disallowed phrases that were spaced out, transliterated or
// otherwise disguised. Phrases are checked in configuration order.
type EvasionMatcher struct {
	phrases []evasionPhrase
}

// NewEvasionMatcher precomputes the normalized form of every phrase
func NewEvasionMatcher(phrases []string) *EvasionMatcher {
	m := &EvasionMatcher{phrases: make([]evasionPhrase, 0, len(phrases))}
	for _, p := range phrases {
		m.phrases = append(m.phrases, evasionPhrase{
			raw:        p,
			lowered:    strings.ToLower(p),
			normalized: Normalize(p),
		})
	}
	return m
}

// Detect reports the first phrase found in text.
// A phrase matches when its normalized form occurs in the normalized text, or when
// the phrase itself occurs in the lowercased raw text. The raw pass catches phrases
// made only of punctuation, whose normalized form is empty.
func (m *EvasionMatcher) Detect(text string) Match {
	normalizedText := Normalize(text)
	loweredText := strings.ToLower(text)

	for _, p := range m.phrases {
		if p.normalized != "" && strings.Contains(normalizedText, p.normalized) {
			return Match{Matched: true, Trigger: p.raw}
		}
		if p.lowered != "" && strings.Contains(loweredText, p.lowered) {
			return Match{Matched: true, Trigger: p.raw}
		}
	}
	return Match{}
}

// Phrases returns the configured phrases in priority order
func (m *EvasionMatcher) Phrases() []string {
	out := make([]string, len(m.phrases))
	for i, p := range m.phrases {
		out[i] = p.raw
	}
	return out
}
