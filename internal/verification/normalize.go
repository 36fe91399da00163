package verification

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining marks after NFD decomposition, which covers
// both Latin diacritics and Arabic tashkeel.
var stripMarks = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

var arabicLetterFolds = strings.NewReplacer(
	"آ", "ا", // alef with madda
	"أ", "ا", // alef with hamza above
	"إ", "ا", // alef with hamza below
	"ٱ", "ا", // alef wasla
	"ة", "ه", // ta marbuta -> ha
	"ى", "ي", // alef maqsura -> ya
	"ـ", "", // tatweel
)

// NormalizeRecitation folds a transcript into a comparison-stable form:
// vowel marks stripped, alef variants unified, whitespace collapsed. Scoring
// should never hinge on orthographic variation the reciter cannot hear.
func NormalizeRecitation(text string) string {
	stripped, _, err := transform.String(stripMarks, text)
	if err != nil {
		stripped = text
	}
	folded := arabicLetterFolds.Replace(stripped)
	return strings.Join(strings.Fields(folded), " ")
}
