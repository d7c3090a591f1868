package convention

import "strings"

// rule rewrites a word ending in suffix: trim bytes are cut, then add is
// appended.
type rule struct {
	suffix string
	trim   int
	add    string
}

// Checked in order; the first matching suffix wins.
var pluralRules = []rule{
	{"ff", 0, "s"},
	{"fe", 2, "ves"},
	{"f", 1, "ves"},
	{"ch", 0, "es"},
	{"sh", 0, "es"},
	{"s", 0, "es"},
	{"x", 0, "es"},
	{"z", 0, "es"},
}

var singularRules = []rule{
	{"ies", 3, "y"},
	{"ves", 3, "f"},
	{"sses", 2, ""},
	{"ches", 2, ""},
	{"shes", 2, ""},
	{"xes", 2, ""},
	{"zes", 2, ""},
	{"ss", 0, ""},
	{"us", 0, ""},
	{"is", 0, ""},
	{"s", 1, ""},
}

// Pluralize returns the English plural of a word, keeping the case of its
// first letter. Only the last word of a snake_case name changes.
func Pluralize(word string) string {
	return inflect(word, irregularPlurals, irregularSingulars, func(lower string) (rule, bool) {
		if consonantY(lower) {
			return rule{"y", 1, "ies"}, true
		}
		r, ok := match(lower, pluralRules)
		if !ok {
			return rule{"", 0, "s"}, true
		}
		return r, true
	})
}

// Singularize returns the English singular of a word. Words that already
// look singular are returned unchanged.
func Singularize(word string) string {
	return inflect(word, irregularSingulars, irregularPlurals, func(lower string) (rule, bool) {
		return match(lower, singularRules)
	})
}

// inflect applies to (irregular forms) or the rule chosen by pick. Words in
// from are already inflected and come back unchanged.
func inflect(word string, to, from map[string]string, pick func(lower string) (rule, bool)) string {
	if word == "" {
		return ""
	}

	lower := strings.ToLower(word)
	last := lower
	if i := strings.LastIndexByte(lower, '_'); i >= 0 {
		last = lower[i+1:]
	}

	if uncountable[last] {
		return word
	}
	if irregular, ok := to[last]; ok {
		prefix := word[:len(word)-len(last)]
		return prefix + matchCase(word[len(prefix):], irregular)
	}
	if _, ok := from[last]; ok {
		return word
	}

	r, ok := pick(lower)
	if !ok {
		return word
	}
	return word[:len(word)-r.trim] + r.add
}

func match(lower string, rules []rule) (rule, bool) {
	for _, r := range rules {
		if len(lower) > len(r.suffix) && strings.HasSuffix(lower, r.suffix) {
			return r, true
		}
	}
	return rule{}, false
}

func consonantY(lower string) bool {
	n := len(lower)
	return n > 1 && lower[n-1] == 'y' && !isVowel(rune(lower[n-2]))
}

// matchCase copies the case of word's first letter onto repl.
func matchCase(word, repl string) string {
	if word != "" && word[0] >= 'A' && word[0] <= 'Z' {
		return strings.ToUpper(repl[:1]) + repl[1:]
	}
	return repl
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
		return true
	default:
		return false
	}
}

var uncountable = map[string]bool{
	"metadata":    true,
	"information": true,
	"equipment":   true,
	"series":      true,
	"species":     true,
	"news":        true,
	"sheep":       true,
	"fish":        true,
}

var irregularPlurals = map[string]string{
	"person":   "people",
	"man":      "men",
	"woman":    "women",
	"child":    "children",
	"foot":     "feet",
	"tooth":    "teeth",
	"goose":    "geese",
	"mouse":    "mice",
	"ox":       "oxen",
	"knife":    "knives",
	"wife":     "wives",
	"life":     "lives",
	"index":    "indexes",
	"matrix":   "matrices",
	"vertex":   "vertices",
	"analysis": "analyses",
	"crisis":   "crises",
	"thesis":   "theses",
	"datum":    "data",
	"medium":   "media",
	"schema":   "schemas",
	"status":   "statuses",
	"address":  "addresses",
}

// irregularSingulars is the inverse of irregularPlurals.
var irregularSingulars = func() map[string]string {
	m := make(map[string]string, len(irregularPlurals))
	for singular, plural := range irregularPlurals {
		m[plural] = singular
	}
	return m
}()
