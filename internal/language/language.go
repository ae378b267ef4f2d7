package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ISO 639-2/B codes still common in Matroska files, mapped to their /T form.
var bibliographic = map[string]string{
	"alb": "sqi",
	"arm": "hye",
	"baq": "eus",
	"bur": "mya",
	"chi": "zho",
	"cze": "ces",
	"dut": "nld",
	"fre": "fra",
	"geo": "kat",
	"ger": "deu",
	"gre": "ell",
	"ice": "isl",
	"mac": "mkd",
	"mao": "mri",
	"may": "msa",
	"per": "fas",
	"rum": "ron",
	"slo": "slk",
	"tib": "bod",
	"wel": "cym",
}

var terminologic = func() map[string]string {
	out := make(map[string]string, len(bibliographic))
	for b, t := range bibliographic {
		out[t] = b
	}
	return out
}()

func parseBase(code string) (language.Base, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return language.Base{}, false
	}
	code = strings.ReplaceAll(code, "_", "-")
	head, rest, _ := strings.Cut(code, "-")
	if alias, ok := bibliographic[head]; ok {
		code = alias
		if rest != "" {
			code += "-" + rest
		}
	}
	tag, err := language.Parse(code)
	if err != nil {
		return language.Base{}, false
	}
	base, confidence := tag.Base()
	if confidence == language.No || base.String() == "und" {
		return language.Base{}, false
	}
	return base, true
}

// Normalize returns the shortest code of the base language (ISO 639-1 where
// one exists). Unrecognized input is returned trimmed and lowercased.
func Normalize(code string) string {
	if base, ok := parseBase(code); ok {
		return base.String()
	}
	return strings.ToLower(strings.TrimSpace(code))
}

// ToISO3 returns the ISO 639-2/T code of the base language, or "und".
func ToISO3(code string) string {
	if base, ok := parseBase(code); ok {
		return base.ISO3()
	}
	return "und"
}

// Variants returns the spellings a language may carry in container tags:
// the normalized code, its ISO 639-2/T code and, where it differs, the
// ISO 639-2/B code. Unrecognized input yields just its normalized form.
func Variants(code string) []string {
	normalized := Normalize(code)
	if normalized == "" {
		return nil
	}
	out := []string{normalized}
	if _, ok := parseBase(code); !ok {
		return out
	}
	iso3 := ToISO3(code)
	if iso3 != normalized {
		out = append(out, iso3)
	}
	if b, ok := terminologic[iso3]; ok {
		out = append(out, b)
	}
	return out
}

// DisplayName returns the English name of the language. Empty input yields
// "Unknown"; unrecognized input is returned uppercased.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	base, ok := parseBase(trimmed)
	if !ok {
		return strings.ToUpper(trimmed)
	}
	if name := display.English.Languages().Name(base); name != "" {
		return name
	}
	return strings.ToUpper(trimmed)
}

// Matches reports whether a track language satisfies a preferred language.
// An empty side never matches.
func Matches(trackLang, preferred string) bool {
	a := Normalize(trackLang)
	b := Normalize(preferred)
	return a != "" && a == b
}

// Index returns the position of trackLang within preferred, or -1.
func Index(trackLang string, preferred []string) int {
	for i, pref := range preferred {
		if Matches(trackLang, pref) {
			return i
		}
	}
	return -1
}

// ParseList splits a comma-separated preference list (mpv alang/slang syntax)
// and returns normalized, deduplicated codes in order.
func ParseList(value string) []string {
	return NormalizeList(strings.Split(value, ","))
}

// NormalizeList normalizes and deduplicates a list of language codes.
func NormalizeList(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	normalized := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		n := Normalize(code)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		normalized = append(normalized, n)
	}
	if len(normalized) == 0 {
		return nil
	}
	return normalized
}
