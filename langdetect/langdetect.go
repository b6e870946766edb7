// Package langdetect detects the language of short text snippets.
package langdetect

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"

	// The replaced lingua-go fork ships language models as separate
	// packages that must be imported to register themselves.
	_ "github.com/pemistahl/lingua-go/language-models/af"
	_ "github.com/pemistahl/lingua-go/language-models/ar"
	_ "github.com/pemistahl/lingua-go/language-models/az"
	_ "github.com/pemistahl/lingua-go/language-models/be"
	_ "github.com/pemistahl/lingua-go/language-models/bg"
	_ "github.com/pemistahl/lingua-go/language-models/bn"
	_ "github.com/pemistahl/lingua-go/language-models/bs"
	_ "github.com/pemistahl/lingua-go/language-models/ca"
	_ "github.com/pemistahl/lingua-go/language-models/cs"
	_ "github.com/pemistahl/lingua-go/language-models/cy"
	_ "github.com/pemistahl/lingua-go/language-models/da"
	_ "github.com/pemistahl/lingua-go/language-models/de"
	_ "github.com/pemistahl/lingua-go/language-models/el"
	_ "github.com/pemistahl/lingua-go/language-models/en"
	_ "github.com/pemistahl/lingua-go/language-models/eo"
	_ "github.com/pemistahl/lingua-go/language-models/es"
	_ "github.com/pemistahl/lingua-go/language-models/et"
	_ "github.com/pemistahl/lingua-go/language-models/eu"
	_ "github.com/pemistahl/lingua-go/language-models/fa"
	_ "github.com/pemistahl/lingua-go/language-models/fi"
	_ "github.com/pemistahl/lingua-go/language-models/fr"
	_ "github.com/pemistahl/lingua-go/language-models/ga"
	_ "github.com/pemistahl/lingua-go/language-models/gu"
	_ "github.com/pemistahl/lingua-go/language-models/he"
	_ "github.com/pemistahl/lingua-go/language-models/hi"
	_ "github.com/pemistahl/lingua-go/language-models/hr"
	_ "github.com/pemistahl/lingua-go/language-models/hu"
	_ "github.com/pemistahl/lingua-go/language-models/hy"
	_ "github.com/pemistahl/lingua-go/language-models/id"
	_ "github.com/pemistahl/lingua-go/language-models/is"
	_ "github.com/pemistahl/lingua-go/language-models/it"
	_ "github.com/pemistahl/lingua-go/language-models/ja"
	_ "github.com/pemistahl/lingua-go/language-models/ka"
	_ "github.com/pemistahl/lingua-go/language-models/kk"
	_ "github.com/pemistahl/lingua-go/language-models/ko"
	_ "github.com/pemistahl/lingua-go/language-models/la"
	_ "github.com/pemistahl/lingua-go/language-models/lg"
	_ "github.com/pemistahl/lingua-go/language-models/lt"
	_ "github.com/pemistahl/lingua-go/language-models/lv"
	_ "github.com/pemistahl/lingua-go/language-models/mi"
	_ "github.com/pemistahl/lingua-go/language-models/mk"
	_ "github.com/pemistahl/lingua-go/language-models/mn"
	_ "github.com/pemistahl/lingua-go/language-models/mr"
	_ "github.com/pemistahl/lingua-go/language-models/ms"
	_ "github.com/pemistahl/lingua-go/language-models/nb"
	_ "github.com/pemistahl/lingua-go/language-models/nl"
	_ "github.com/pemistahl/lingua-go/language-models/nn"
	_ "github.com/pemistahl/lingua-go/language-models/pa"
	_ "github.com/pemistahl/lingua-go/language-models/pl"
	_ "github.com/pemistahl/lingua-go/language-models/pt"
	_ "github.com/pemistahl/lingua-go/language-models/ro"
	_ "github.com/pemistahl/lingua-go/language-models/ru"
	_ "github.com/pemistahl/lingua-go/language-models/sk"
	_ "github.com/pemistahl/lingua-go/language-models/sl"
	_ "github.com/pemistahl/lingua-go/language-models/sn"
	_ "github.com/pemistahl/lingua-go/language-models/so"
	_ "github.com/pemistahl/lingua-go/language-models/sq"
	_ "github.com/pemistahl/lingua-go/language-models/sr"
	_ "github.com/pemistahl/lingua-go/language-models/st"
	_ "github.com/pemistahl/lingua-go/language-models/sv"
	_ "github.com/pemistahl/lingua-go/language-models/sw"
	_ "github.com/pemistahl/lingua-go/language-models/ta"
	_ "github.com/pemistahl/lingua-go/language-models/te"
	_ "github.com/pemistahl/lingua-go/language-models/th"
	_ "github.com/pemistahl/lingua-go/language-models/tl"
	_ "github.com/pemistahl/lingua-go/language-models/tn"
	_ "github.com/pemistahl/lingua-go/language-models/tr"
	_ "github.com/pemistahl/lingua-go/language-models/ts"
	_ "github.com/pemistahl/lingua-go/language-models/uk"
	_ "github.com/pemistahl/lingua-go/language-models/ur"
	_ "github.com/pemistahl/lingua-go/language-models/vi"
	_ "github.com/pemistahl/lingua-go/language-models/xh"
	_ "github.com/pemistahl/lingua-go/language-models/yo"
	_ "github.com/pemistahl/lingua-go/language-models/zh"
	_ "github.com/pemistahl/lingua-go/language-models/zu"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// detector construction is expensive; build it once on first use.
var newDetector = sync.OnceValue(func() lingua.LanguageDetector {
	return lingua.NewLanguageDetectorBuilder().
		FromAllSpokenLanguages().
		WithLowAccuracyMode(). // short snippets, speed over precision
		Build()
})

// Detect returns the ISO 639-1 code and English display name of the text's
// language. Returns ("auto", "Auto") when the text is too short or the
// language cannot be determined.
func Detect(text string) (code, name string) {
	text = strings.TrimSpace(text)
	if len(text) < 2 {
		return "auto", "Auto"
	}

	lang, ok := newDetector().DetectLanguageOf(text)
	if !ok {
		return "auto", "Auto"
	}

	code = strings.ToLower(lang.IsoCode639_1().String())
	tag := language.Make(code)
	name = display.English.Tags().Name(tag)
	if name == "" {
		name = lang.String()
	}
	return code, name
}
