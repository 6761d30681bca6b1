package catalog

import "sort"

// Language is a response language the advisor can produce.
type Language struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// DefaultLanguage is used when a request names no language.
const DefaultLanguage = "english"

var languages = map[string]Language{
	"english":   {Key: "english", Name: "English", Code: "en"},
	"hindi":     {Key: "hindi", Name: "हिंदी", Code: "hi"},
	"bengali":   {Key: "bengali", Name: "বাংলা", Code: "bn"},
	"tamil":     {Key: "tamil", Name: "தமிழ்", Code: "ta"},
	"telugu":    {Key: "telugu", Name: "తెలుగు", Code: "te"},
	"marathi":   {Key: "marathi", Name: "मराठी", Code: "mr"},
	"gujarati":  {Key: "gujarati", Name: "ગુજરાતી", Code: "gu"},
	"kannada":   {Key: "kannada", Name: "ಕನ್ನಡ", Code: "kn"},
	"malayalam": {Key: "malayalam", Name: "മലയാളം", Code: "ml"},
	"punjabi":   {Key: "punjabi", Name: "ਪੰਜਾਬੀ", Code: "pa"},
	"urdu":      {Key: "urdu", Name: "اردو", Code: "ur"},
	"odia":      {Key: "odia", Name: "ଓଡ଼ିଆ", Code: "or"},
}

// LookupLanguage returns the language registered under key.
func LookupLanguage(key string) (Language, bool) {
	l, ok := languages[key]
	return l, ok
}

// LanguageName returns the native name for key, or English for unknown keys.
func LanguageName(key string) string {
	if l, ok := languages[key]; ok {
		return l.Name
	}
	return languages[DefaultLanguage].Name
}

// Languages lists all supported languages ordered by key, English first.
func Languages() []Language {
	out := make([]Language, 0, len(languages))
	for _, l := range languages {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key == DefaultLanguage || out[j].Key == DefaultLanguage {
			return out[i].Key == DefaultLanguage
		}
		return out[i].Key < out[j].Key
	})
	return out
}
