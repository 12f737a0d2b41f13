package gatekeeper

import (
	"sort"
	"strconv"
	"strings"
)

// SupportedLocales is the fixed set of locales the directory serves.
var SupportedLocales = []string{"en", "fr", "de", "es", "ar"}

// DefaultLocale is the fallback when no client hint matches.
const DefaultLocale = "en"

// ResolveLocale maps a request path to its locale segment. It returns the
// locale and the locale-stripped remainder ("/en/admin" -> "en", "/admin").
// An empty locale means the path carries no recognizable segment and the
// caller must redirect. Pure and total; never errors.
func ResolveLocale(path string) (locale, rest string) {
	trimmed := strings.TrimPrefix(path, "/")
	segment, remainder, found := strings.Cut(trimmed, "/")
	if !found {
		remainder = ""
	}

	for _, candidate := range SupportedLocales {
		if segment == candidate {
			return candidate, "/" + remainder
		}
	}
	return "", path
}

// GuessLocale derives a locale from an Accept-Language style header,
// honoring q-value ordering, falling back to DefaultLocale. Malformed
// headers degrade to the fallback rather than erroring.
func GuessLocale(acceptLanguage string) string {
	type weighted struct {
		tag string
		q   float64
	}

	var candidates []weighted
	for _, part := range strings.Split(acceptLanguage, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tag, params, _ := strings.Cut(part, ";")
		q := 1.0
		if params != "" {
			if _, qval, ok := strings.Cut(params, "q="); ok {
				if parsed, err := strconv.ParseFloat(strings.TrimSpace(qval), 64); err == nil {
					q = parsed
				}
			}
		}
		// base language only: "en-US" matches "en"
		base, _, _ := strings.Cut(strings.TrimSpace(tag), "-")
		candidates = append(candidates, weighted{tag: strings.ToLower(base), q: q})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].q > candidates[j].q
	})

	for _, candidate := range candidates {
		for _, supported := range SupportedLocales {
			if candidate.tag == supported {
				return supported
			}
		}
	}
	return DefaultLocale
}
