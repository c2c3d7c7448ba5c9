// Package textproc implements the two text normalization chains feeding
// the lexical (BM25) and semantic (BERT) sides of the search engine.
package textproc

import (
	"regexp"
	"strings"
	"unicode"
)

// urlReplacement substitutes removed URLs so the surrounding sentence
// keeps a meaningful token.
const urlReplacement = "веб-интерфейс"

// productToken replaces mentions of the ticketing system's own name,
// which otherwise dominates similarity.
const productToken = "система"

var (
	leadingProductRe = regexp.MustCompile(`^Erudite`)
	productRe        = regexp.MustCompile(`erudite`)
	urlRe            = regexp.MustCompile(`(?:https?://|www\.)\S+`)

	// Covers the common emoji blocks: symbols/pictographs, emoticons,
	// transport, supplemental, dingbats, arrows, variation selectors.
	emojiRe = regexp.MustCompile(`[\x{1F000}-\x{1FAFF}\x{2600}-\x{27BF}\x{2B00}-\x{2BFF}\x{FE0F}\x{200D}]`)

	nonWordRe    = regexp.MustCompile(`[^а-яА-Яa-zA-Z0-9\s-]`)
	latinRunRe   = regexp.MustCompile(`\b[A-Za-z]{8,}\b`)
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
)

// Normalize applies the cleaning steps shared by both branches: strip a
// single leading "Erudite" token, lowercase, drop emoji, replace URLs,
// drop digits and currency symbols (punctuation is preserved), and map
// the product name to its generic token.
func Normalize(text string) string {
	text = leadingProductRe.ReplaceAllString(text, "")
	text = strings.ToLower(text)
	text = urlRe.ReplaceAllString(text, urlReplacement)
	text = emojiRe.ReplaceAllString(text, "")
	text = strings.Map(dropDigitsAndCurrency, text)
	text = productRe.ReplaceAllString(text, productToken)
	return text
}

func dropDigitsAndCurrency(r rune) rune {
	if unicode.IsDigit(r) || unicode.Is(unicode.Sc, r) {
		return -1
	}
	return r
}

// stripLongLatinRuns removes Latin words of 8+ letters. Long runs are
// almost always concatenated identifiers or leftover markup that only
// add noise to both branches.
func stripLongLatinRuns(text string) string {
	return latinRunRe.ReplaceAllString(text, "")
}

// collapseWhitespace squeezes repeated whitespace and trims the ends.
func collapseWhitespace(text string) string {
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(text, " "))
}
