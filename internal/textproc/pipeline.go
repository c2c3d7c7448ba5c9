package textproc

import (
	"strings"

	"github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/russian"
)

// Stem reduces a Russian token to its snowball stem. Tokens the stemmer
// does not recognize pass through unchanged.
func Stem(token string) string {
	env := snowballstem.NewEnv(token)
	russian.Stem(env)
	return env.Current()
}

// BM25Tokens produces the lexical representation of a text: cleaned,
// punctuation-stripped, stemmed, stopword-filtered tokens.
//
// The chain is deterministic and side-effect free; empty input yields an
// empty (nil) token list.
func BM25Tokens(text string) []string {
	t := Normalize(text)
	t = nonWordRe.ReplaceAllString(t, "")

	var kept []string
	for _, tok := range strings.Fields(t) {
		stem := Stem(tok)
		if stem == "" || isStopWord(stem) {
			continue
		}
		kept = append(kept, stem)
	}

	t = stripLongLatinRuns(strings.Join(kept, " "))
	t = collapseWhitespace(t)
	if t == "" {
		return nil
	}
	return strings.Fields(t)
}

// BertText produces the embedding-ready form of a text: the shared
// cleaning pass with long Latin runs removed and whitespace collapsed.
// Punctuation, stopwords and inflection are preserved for the model.
func BertText(text string) string {
	t := Normalize(text)
	t = stripLongLatinRuns(t)
	return collapseWhitespace(t)
}
