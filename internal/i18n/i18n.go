package i18n

import "strings"

// Default language is French; English is served when the Accept-Language
// header asks for it.

var messages = map[string]map[string]string{
	"fr": {
		"required":              "Requis",
		"must_be_positive":      "Doit être positif",
		"must_not_be_negative":  "Ne doit pas être négatif",
		"out_of_range":          "Hors limites",
		"invalid_type":          "Type invalide",
		"invalid_unit":          "Unité invalide",
		"labor_requires_hours":  "La main d'oeuvre se facture en heures",
		"included_must_be_free": "Une ligne incluse doit être gratuite",
		"invalid_credentials":   "Identifiants invalides",
		"quota_exceeded":        "Quota mensuel de générations atteint",
		"not_found":             "Introuvable",
	},
	"en": {
		"required":              "Required",
		"must_be_positive":      "Must be positive",
		"must_not_be_negative":  "Must not be negative",
		"out_of_range":          "Out of range",
		"invalid_type":          "Invalid type",
		"invalid_unit":          "Invalid unit",
		"labor_requires_hours":  "Labor is billed in hours",
		"included_must_be_free": "An included line must be free",
		"invalid_credentials":   "Invalid credentials",
		"quota_exceeded":        "Monthly generation quota reached",
		"not_found":             "Not found",
	},
}

// DetectLanguage picks a supported language from an Accept-Language header.
func DetectLanguage(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	if strings.HasPrefix(h, "en") {
		return "en"
	}
	return "fr"
}

// T translates a message code. Unknown languages fall back to French,
// unknown codes echo the code itself.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages["fr"][code]; ok {
		return s
	}
	return code
}
