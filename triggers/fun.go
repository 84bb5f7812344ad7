package triggers

import (
	"math/rand"
	"strings"
	"sync"
	"unicode"
)

// FunReply is a canned answer to a playful keyword
type FunReply struct {
	Keyword        string
	Text           string
	ReplyToMessage bool
}

// FunMatcher answers messages that mention a configured keyword in one of its
// grammatical forms. It is a suffix allowlist rather than a stemmer: "ботов"
// matches "бот", "ботаника" does not.
type FunMatcher struct {
	keywords []FunKeyword
	suffixes map[string]struct{}

	mu  sync.Mutex // guards rng, which is not safe for concurrent use
	rng *rand.Rand
}

// NewFunMatcher builds a matcher. rng decides which response is picked; pass a
// seeded source in tests for deterministic output.
func NewFunMatcher(cfg FunConfig, rng *rand.Rand) *FunMatcher {
	suffixes := map[string]struct{}{"": {}}
	for _, s := range cfg.Suffixes {
		suffixes[strings.ToLower(s)] = struct{}{}
	}

	keywords := make([]FunKeyword, 0, len(cfg.Keywords))
	for _, kw := range cfg.Keywords {
		keywords = append(keywords, FunKeyword{
			Keyword:   strings.ToLower(kw.Keyword),
			Responses: kw.Responses,
		})
	}

	return &FunMatcher{
		keywords: keywords,
		suffixes: suffixes,
		rng:      rng,
	}
}

// Match returns a reply for the first keyword found, or nil
func (m *FunMatcher) Match(text string) *FunReply {
	words := splitWords(strings.ToLower(text))
	if len(words) == 0 {
		return nil
	}

	for _, kw := range m.keywords {
		for _, word := range words {
			if !m.wordMatches(word, kw.Keyword) {
				continue
			}
			return &FunReply{
				Keyword:        kw.Keyword,
				Text:           m.pick(kw.Responses),
				ReplyToMessage: true,
			}
		}
	}
	return nil
}

func (m *FunMatcher) wordMatches(word, keyword string) bool {
	if !strings.HasPrefix(word, keyword) {
		return false
	}
	_, ok := m.suffixes[strings.TrimPrefix(word, keyword)]
	return ok
}

func (m *FunMatcher) pick(responses []string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return responses[m.rng.Intn(len(responses))]
}

// splitWords splits on any run of characters that are neither letters nor digits
func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
