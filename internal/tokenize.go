package internal

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/jdkato/prose/tokenize"
)

var errMalformedText = errors.New("malformed text encoding")

// punkt loads the English Punkt model once per process.
var punkt = sync.OnceValues(func() (*tokenize.PunktSentenceTokenizer, error) {
	return tokenize.NewPunktSentenceTokenizer(), nil
})

// Tokenizer turns raw text into lowercase alphanumeric tokens with stopwords removed.
type Tokenizer struct {
	stopwords map[string]struct{}
	words     *tokenize.TreebankWordTokenizer
}

func NewTokenizer(stopwords []string) *Tokenizer {
	set := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		set[strings.ToLower(w)] = struct{}{}
	}
	return &Tokenizer{stopwords: set, words: tokenize.NewTreebankWordTokenizer()}
}

func (t *Tokenizer) isStopword(w string) bool {
	_, ok := t.stopwords[strings.ToLower(w)]
	return ok
}

func (t *Tokenizer) Tokenize(text string) ([]string, error) {
	if !utf8.ValidString(text) {
		return nil, errMalformedText
	}

	words, err := t.wordTokenize(text)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !isAlnum(w) || t.isStopword(w) {
			continue
		}
		out = append(out, strings.ToLower(w))
	}
	return out, nil
}

// wordTokenize splits text into sentences with Punkt and each sentence into
// Penn Treebank tokens.
func (t *Tokenizer) wordTokenize(text string) ([]string, error) {
	sentences, err := punkt()
	if err != nil {
		return nil, fmt.Errorf("load sentence model: %w", err)
	}

	var out []string
	for _, s := range sentences.Tokenize(text) {
		out = append(out, t.words.Tokenize(s)...)
	}
	return out, nil
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}
