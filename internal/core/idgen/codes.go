package idgen

import "strings"

// UnknownCode is emitted for blank or missing category names.
const UnknownCode = "UNK"

// Lookup is case-insensitive; keys are stored lower-cased.
var categoryCodes = map[string]string{
	"premium series":    "PRE",
	"classic series":    "CLA",
	"latte series":      "LAT",
	"frappe series":     "FRA",
	"healthy fruit tea": "HFT",
	"hot drinks":        "HOT",
	"food pair":         "FOO",
	"add-ons":           "ADD",
	"cups":              "CUP",
}

// CategoryCode maps a category name to its 3-letter code. Names outside
// the fixed table get a best-effort code derived from the name itself;
// the function never fails.
func CategoryCode(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return UnknownCode
	}
	if code, ok := categoryCodes[strings.ToLower(trimmed)]; ok {
		return code
	}
	return codeFromName(trimmed)
}

// codeFromName derives a 3-letter code: first letter of each word up to
// three, then the first word's remaining characters, then X padding.
func codeFromName(name string) string {
	words := strings.Fields(strings.ToUpper(name))
	if len(words) == 0 {
		return UnknownCode
	}

	var b strings.Builder
	if len(words) == 1 {
		b.WriteString(words[0])
	} else {
		for _, word := range words {
			if b.Len() < 3 {
				b.WriteByte(word[0])
			}
		}
		for i := 1; i < len(words[0]) && b.Len() < 3; i++ {
			b.WriteByte(words[0][i])
		}
	}

	code := b.String()
	for len(code) < 3 {
		code += "X"
	}
	return code[:3]
}
