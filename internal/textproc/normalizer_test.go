package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "lowercases", input: "Login FAILS", expected: "login fails"},
		{name: "punctuation becomes space", input: "crash!on-startup", expected: "crash on startup"},
		{name: "digits removed", input: "api returns 500 error", expected: "api returns error"},
		{name: "collapses whitespace", input: "  too \t\n many   spaces ", expected: "too many spaces"},
		{name: "non ascii letters dropped", input: "café crash", expected: "caf crash"},
		{name: "only symbols", input: "#123 !!!", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestTokenizeWeighted(t *testing.T) {
	t.Run("drops stopwords and short tokens", func(t *testing.T) {
		vec := TokenizeWeighted("The app is on fire in an hour")
		assert.Equal(t, TermVector{"app": 1, "fire": 1, "hour": 1}, vec)
	})

	t.Run("counts repeated stems together", func(t *testing.T) {
		vec := TokenizeWeighted("Login fails. Login failed again, login failing")
		assert.Equal(t, 3.0, vec["login"])
		assert.Equal(t, 3.0, vec["fail"])
		assert.Equal(t, 1.0, vec["again"])
	})

	t.Run("stopword only text is empty", func(t *testing.T) {
		vec := TokenizeWeighted("it is what it is")
		assert.Empty(t, vec)
		assert.Equal(t, 0.0, vec.Magnitude())
	})

	t.Run("magnitude", func(t *testing.T) {
		vec := TermVector{"crash": 3, "login": 4}
		assert.InDelta(t, 5.0, vec.Magnitude(), 1e-12)
		assert.Len(t, vec, 2)
	})
}

func TestSuffixStemmer_TermsKeepOrder(t *testing.T) {
	assert.Equal(t, []string{"login", "fail", "submit"}, NewSuffixStemmer().Terms("Login fails on submit"))
}

func TestSuffixStemmer_Stem(t *testing.T) {
	stemmer := NewSuffixStemmer()

	tests := []struct {
		word     string
		expected string
	}{
		{"loading", "load"},
		{"crashed", "crash"},
		{"slowly", "slow"},
		{"crashes", "crashe"},
		{"users", "user"},
		{"access", "access"},
		{"class", "class"},
		{"bus", "bus"},
		{"sing", "sing"},
		{"used", "used"},
		{"Failed", "fail"},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.expected, stemmer.Stem(tt.word))
		})
	}
}

func TestIsStopWord(t *testing.T) {
	assert.True(t, IsStopWord("the"))
	assert.True(t, IsStopWord("with"))
	assert.False(t, IsStopWord("crash"))
}
