package evaluator

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Sun Yat-sen", "sun yatsen"},
		{"strips punctuation set", "Self-Strengthening (Movement)!", "selfstrengthening movement"},
		{"keeps characters outside the set", "people's congress?", "people's congress?"},
		{"collapses whitespace", "  Hundred   Days\tReform \n", "100 days reform"},
		{"number words per word", "nineteen eleven", "19 11"},
		{"digits untouched", "1911", "1911"},
		{"tens and thousand", "Twenty thousand", "20 1000"},
		{"expands ccp", "the CCP", "chinese communist party"},
		{"full form matches", "Chinese Communist Party", "chinese communist party"},
		{"expansion drops its own stop words", "PRC", "peoples republic china"},
		{"expands generic shorthand", "econ ref", "economic reform"},
		{"whole words only", "kmtx revolt", "kmtx revolt"},
		{"removes stop words", "the Treaty of Versailles", "treaty versailles"},
		{"interrogatives removed", "who what when", ""},
		{"punctuation only", "...", ""},
		{"dotless i folds", "Kıssa", "kissa"},
		{"long s folds", "ſun", "sun"},
		{"final sigma folds", "λογος", "λογοσ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"the CCP",
		"The PRC was founded in nineteen forty-nine.",
		"KMT & the Northern Expedition",
		"  ~~~ ",
		"econ mod under Deng",
		"Special Economic Zones (SEZ)",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), in)
	}
}

func TestNormalize_CaseInsensitive(t *testing.T) {
	assert.Equal(t, Normalize("Long March"), Normalize("LONG MARCH"))
	assert.Equal(t, Normalize("kmt"), Normalize("KMT"))
	for _, in := range []string{"Kıssa", "ſun", "ς", "Straße", "ǅemal"} {
		assert.Equal(t, Normalize(in), Normalize(strings.ToUpper(in)), in)
	}
}

func FuzzNormalize(f *testing.F) {
	for _, seed := range []string{
		"the CCP",
		"The PRC was founded in nineteen forty-nine.",
		"KMT & the Northern Expedition",
		"  ~~~ ",
		"econ mod under Deng",
		"Special Economic Zones (SEZ)",
		"Long March",
		"ı", "ſ", "ς", "Kıssa", "ΑΣ-Β",
	} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		if !utf8.ValidString(s) {
			t.Skip()
		}
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Fatalf("not idempotent: %q -> %q -> %q", s, once, twice)
		}
		if upper := Normalize(strings.ToUpper(s)); upper != once {
			t.Fatalf("case-sensitive: %q -> %q, upper -> %q", s, once, upper)
		}
	})
}

func TestNormalize_NumberWordsAreNotCompounded(t *testing.T) {
	// Per-word substitution cannot produce "1911" from two words.
	assert.Equal(t, "19 11", Normalize("nineteen eleven"))
	assert.NotEqual(t, Normalize("1911"), Normalize("nineteen eleven"))
}
