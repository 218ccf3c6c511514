package helpers

import "strings"

// LocaleParts splits a BCP 47 style tag such as "en-US" or "pt_BR" into a
// lowercase language and a lowercase region. Missing parts default to en/us.
func LocaleParts(locale string) (lang, region string) {
	lang, region = "en", "us"
	locale = strings.TrimSpace(strings.ReplaceAll(locale, "_", "-"))
	if locale == "" {
		return lang, region
	}
	parts := strings.Split(locale, "-")
	if l := strings.ToLower(parts[0]); len(l) == 2 {
		lang = l
	}
	for _, p := range parts[1:] {
		if len(p) == 2 {
			region = strings.ToLower(p)
			break
		}
	}
	return lang, region
}
