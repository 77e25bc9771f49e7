// Package lang detects the language of extracted article text. It backs
// the book's dc:language metadata when the page itself declares none.
package lang

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// Building the lingua models is expensive, so the detector is shared and
// built on first use.
var (
	once     sync.Once
	detector lingua.LanguageDetector
)

// Restricting to common article languages keeps the model footprint and
// confusion rate down.
var languages = []lingua.Language{
	lingua.English,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
	lingua.Russian,
	lingua.Japanese,
	lingua.Chinese,
}

func get() lingua.LanguageDetector {
	once.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			Build()
	})
	return detector
}

// Detect returns the ISO 639-1 code of the text's language, or "" when
// detection is not confident. Short fragments are skipped outright since
// they carry too little signal.
func Detect(text string) string {
	text = strings.TrimSpace(text)
	if len(text) < 40 {
		return ""
	}
	language, ok := get().DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(language.IsoCode639_1().String())
}
