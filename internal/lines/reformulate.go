package lines

import "strings"

// Reformulate turns a truncated or vague description into a complete
// canonical phrase for the given line type. Known intervention keywords win
// over generic cleanup; as a last resort a per-type fallback label is used so
// the pipeline never emits an empty description.
func Reformulate(desc string, t Type) string {
	if out, ok := reformulateKnown(desc, t); ok {
		return out
	}
	out := stripIncompleteTail(desc)
	out = balanceParens(out)
	if IsTruncated(out) {
		out = dropStrayLastWord(out)
	}
	if strings.TrimSpace(out) == "" || IsTruncated(out) {
		return FallbackDescription(t, desc)
	}
	return out
}

// reformulateKnown handles the phrases the generator truncates most often.
func reformulateKnown(desc string, t Type) (string, bool) {
	n := normalizeText(desc)
	visc := viscosityOf(desc)
	vol := volumeOf(desc)
	switch {
	case strings.Contains(n, "huile") && (strings.Contains(n, "vidange") || strings.Contains(n, "filtre") || strings.Contains(n, "filtr")):
		if t == TypePiece {
			label := "Huile moteur"
			if visc != "" {
				label += " " + visc
			}
			if vol != "" {
				label += " — " + vol
			}
			return label, true
		}
		label := "Vidange huile moteur + remplacement filtre à huile"
		if visc != "" {
			label = "Vidange huile moteur (" + visc + ") + remplacement filtre à huile"
		}
		return label, true
	case strings.Contains(n, "huile") && t == TypePiece:
		label := "Huile moteur"
		if visc != "" {
			label += " " + visc
		}
		if vol != "" {
			label += " — " + vol
		}
		return label, true
	case strings.Contains(n, "plaquett"):
		pos := brakePosition(n)
		if t == TypePiece {
			return "Plaquettes de frein " + pos, true
		}
		return "Remplacement plaquettes de frein " + pos, true
	case strings.Contains(n, "nettoyant") || strings.Contains(n, "consommabl"):
		return "Nettoyant freins et consommables atelier", true
	case strings.HasPrefix(n, "option"):
		return "Option d'entretien complémentaire", true
	}
	return "", false
}

func brakePosition(normalized string) string {
	if strings.Contains(normalized, "arriere") {
		return "arrière"
	}
	return "avant"
}

// stripIncompleteTail removes trailing punctuation that marks a cut-off
// phrase ("Remplacement courroie —", "Contrôle,").
func stripIncompleteTail(s string) string {
	out := strings.TrimSpace(s)
	for {
		trimmed := out
		for _, end := range badEndings {
			trimmed = strings.TrimSuffix(trimmed, end)
		}
		trimmed = strings.TrimSpace(trimmed)
		if trimmed == out {
			return out
		}
		out = trimmed
	}
}

// balanceParens closes or drops unmatched opening parentheses.
func balanceParens(s string) string {
	open := strings.Count(s, "(")
	closed := strings.Count(s, ")")
	if open <= closed {
		return s
	}
	// A dangling "(" with nothing useful after it is dropped, otherwise the
	// parenthesis is closed.
	idx := strings.LastIndex(s, "(")
	tail := strings.TrimSpace(s[idx+1:])
	if tail == "" {
		return strings.TrimSpace(s[:idx])
	}
	return s + strings.Repeat(")", open-closed)
}

// dropStrayLastWord removes a trailing fragment ("Remplacement courroie de")
// when the remainder still reads as a phrase.
func dropStrayLastWord(s string) string {
	words := strings.Fields(s)
	if len(words) < 2 {
		return s
	}
	last := strings.ToLower(words[len(words)-1])
	stray := len([]rune(last)) <= 3
	for _, stem := range incompleteStems {
		if last != stem && strings.HasPrefix(stem, last) {
			stray = true
		}
	}
	if !stray {
		return s
	}
	rest := strings.Join(words[:len(words)-1], " ")
	if !IsTruncated(rest) {
		return rest
	}
	return s
}

// FallbackDescription produces a generic but complete label keyed by line
// type and whatever keyword survives in the original text.
func FallbackDescription(t Type, original string) string {
	n := normalizeText(original)
	switch {
	case strings.Contains(n, "plaquett") || strings.Contains(n, "frein"):
		switch t {
		case TypePiece:
			return "Plaquettes de frein avant"
		case TypeMainOeuvre:
			return "Remplacement plaquettes de frein avant"
		default:
			return "Forfait freinage"
		}
	case strings.Contains(n, "huile") || strings.Contains(n, "vidang"):
		switch t {
		case TypePiece:
			return "Huile moteur"
		case TypeMainOeuvre:
			return "Vidange huile moteur"
		default:
			return "Forfait vidange"
		}
	case strings.Contains(n, "filtr"):
		if t == TypeMainOeuvre {
			return "Remplacement filtre à huile"
		}
		return "Filtre à huile"
	case strings.Contains(n, "nettoy"):
		return "Nettoyant freins"
	case strings.Contains(n, "option"):
		return "Option d'entretien complémentaire"
	}
	switch t {
	case TypePiece:
		return "Pièce détachée"
	case TypeMainOeuvre:
		return "Intervention mécanique"
	case TypeForfait:
		return "Forfait atelier"
	}
	return "Ligne de devis"
}
