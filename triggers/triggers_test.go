package triggers

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDefault(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	return cfg
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "lowercases cyrillic", in: "МНЕ Грустно", want: "мнегрустно"},
		{name: "strips spacing", in: "м н е   г р у с т н о", want: "мнегрустно"},
		{name: "strips punctuation", in: "ж.и.з.н.ь-б.о.л.ь!!!", want: "жизньболь"},
		{name: "keeps digits", in: "мн3 пл0х0", want: "мн3пл0х0"},
		{name: "keeps latin", in: "Mne Ploho", want: "mneploho"},
		{name: "keeps yo", in: "ВСЁ", want: "всё"},
		{name: "drops other scripts", in: "γειά 你好 ok", want: "ok"},
		{name: "drops emoji", in: "🤖бот🤖", want: "бот"},
		{name: "only punctuation", in: "(((", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"Hello, World!",
		"М н Е  гРуСтНо 123",
		"mнe грустнo",
		"жизнь-боль (((",
		"\t\n ЁЖИК ёжик",
		"🙂🙃 абв xyz 0",
	}
	for _, s := range inputs {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "input %q", s)
	}
}

func TestEvasionMatcher_EveryPhraseIsDetected(t *testing.T) {
	cfg := loadDefault(t)
	matcher := NewEvasionMatcher(cfg.Evasion)

	index := make(map[string]int, len(cfg.Evasion))
	for i, p := range cfg.Evasion {
		if _, seen := index[p]; !seen {
			index[p] = i
		}
	}

	for i, phrase := range cfg.Evasion {
		t.Run(phrase, func(t *testing.T) {
			got := matcher.Detect("prefix " + phrase + " suffix")
			require.True(t, got.Matched)

			// An earlier phrase may legitimately win when it is contained in this one.
			winner, ok := index[got.Trigger]
			require.True(t, ok, "unknown trigger %q", got.Trigger)
			assert.LessOrEqual(t, winner, i)
			if winner == i {
				assert.Equal(t, phrase, got.Trigger)
			}
		})
	}
}

func TestEvasionMatcher_Detect(t *testing.T) {
	matcher := NewEvasionMatcher([]string{"мне грустно", "жизнь-боль", "((("})

	tests := []struct {
		name    string
		text    string
		matched bool
		trigger string
	}{
		{name: "plain", text: "ну вот, мне грустно сегодня", matched: true, trigger: "мне грустно"},
		{name: "spaced out", text: "м н е   г р у с т н о", matched: true, trigger: "мне грустно"},
		{name: "uppercase with punctuation", text: "МНЕ... ГРУСТНО!", matched: true, trigger: "мне грустно"},
		{name: "hyphenated phrase", text: "эх, жизнь-боль", matched: true, trigger: "жизнь-боль"},
		{name: "hyphenated phrase normalized", text: "жизнь боль", matched: true, trigger: "жизнь-боль"},
		{name: "punctuation only phrase", text: "ладно (((", matched: true, trigger: "((("},
		{name: "punctuation only phrase not present", text: "ладно ((", matched: false},
		{name: "clean text", text: "всем привет, как дела?", matched: false},
		{name: "empty", text: "", matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matcher.Detect(tt.text)
			assert.Equal(t, tt.matched, got.Matched)
			assert.Equal(t, tt.trigger, got.Trigger)
		})
	}
}

func TestEvasionMatcher_FirstMatchWins(t *testing.T) {
	matcher := NewEvasionMatcher([]string{"плохо", "мне плохо"})

	got := matcher.Detect("мне плохо")
	assert.True(t, got.Matched)
	assert.Equal(t, "плохо", got.Trigger)
}

func TestEvasionMatcher_EmptyNormalizedPhraseDoesNotMatchEverything(t *testing.T) {
	matcher := NewEvasionMatcher([]string{"!!!"})

	assert.False(t, matcher.Detect("обычное сообщение").Matched)
	assert.True(t, matcher.Detect("что!!!").Matched)
}

func TestFunMatcher_SuffixAllowlist(t *testing.T) {
	cfg := loadDefault(t)
	matcher := NewFunMatcher(cfg.Fun, rand.New(rand.NewSource(1)))

	tests := []struct {
		name    string
		text    string
		keyword string
	}{
		{name: "bare keyword", text: "бот", keyword: "бот"},
		{name: "allowed suffix", text: "ботов", keyword: "бот"},
		{name: "allowed suffix capitalized", text: "Эй, БОТИК!", keyword: "бот"},
		{name: "second keyword", text: "у меня два кота", keyword: "кот"},
		{name: "stem keyword", text: "дуэль кто?", keyword: "дуэл"},
		{name: "prefix only", text: "ботаника", keyword: ""},
		{name: "keyword inside word", text: "робот", keyword: ""},
		{name: "no keyword", text: "всем привет", keyword: ""},
		{name: "empty", text: "", keyword: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matcher.Match(tt.text)
			if tt.keyword == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.keyword, got.Keyword)
			assert.True(t, got.ReplyToMessage)
			assert.NotEmpty(t, got.Text)
		})
	}
}

func TestFunMatcher_KeywordOrderBeatsWordOrder(t *testing.T) {
	matcher := NewFunMatcher(FunConfig{
		Keywords: []FunKeyword{
			{Keyword: "бот", Responses: []string{"bot"}},
			{Keyword: "кот", Responses: []string{"cat"}},
		},
	}, rand.New(rand.NewSource(1)))

	got := matcher.Match("кот и бот")
	require.NotNil(t, got)
	assert.Equal(t, "bot", got.Text)
}

func TestFunMatcher_DeterministicWithSeed(t *testing.T) {
	cfg := FunConfig{
		Keywords: []FunKeyword{
			{Keyword: "бот", Responses: []string{"a", "b", "c", "d", "e"}},
		},
	}

	first := NewFunMatcher(cfg, rand.New(rand.NewSource(42)))
	second := NewFunMatcher(cfg, rand.New(rand.NewSource(42)))

	for i := 0; i < 20; i++ {
		a := first.Match("бот")
		b := second.Match("бот")
		require.NotNil(t, a)
		require.NotNil(t, b)
		assert.Equal(t, a.Text, b.Text)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := loadDefault(t)
		assert.NotEmpty(t, cfg.Evasion)
		assert.Contains(t, cfg.Fun.Suffixes, "ов")
		assert.NotContains(t, cfg.Fun.Suffixes, "аника")
	})

	t.Run("override file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "triggers.yaml")
		require.NoError(t, os.WriteFile(path, []byte("evasion:\n  - тест\nfun:\n  keywords: []\n"), 0o600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"тест"}, cfg.Evasion)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("no evasion phrases", func(t *testing.T) {
		_, err := ParseConfig([]byte("fun:\n  keywords: []\n"))
		assert.Error(t, err)
	})

	t.Run("keyword without responses", func(t *testing.T) {
		_, err := ParseConfig([]byte("evasion: [x]\nfun:\n  keywords:\n    - keyword: бот\n"))
		assert.Error(t, err)
	})
}
