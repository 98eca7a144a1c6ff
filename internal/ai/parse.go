package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mkeita/garage-app/internal/lines"
)

var ErrNoJSON = errors.New("ai: no JSON array in completion")

// ParseLines extrait le tableau JSON de la réponse du modèle. Les modèles
// entourent souvent le JSON de clôtures markdown ou de texte; on prend le
// premier tableau complet rencontré.
func ParseLines(content string) ([]lines.Line, error) {
	payload := extractArray(content)
	if payload == "" {
		return nil, ErrNoJSON
	}

	var ls []lines.Line
	if err := json.Unmarshal([]byte(payload), &ls); err != nil {
		return nil, fmt.Errorf("ai: decode lines: %w", err)
	}
	if len(ls) == 0 {
		return nil, ErrNoJSON
	}

	out := make([]lines.Line, 0, len(ls))
	for _, l := range ls {
		l = coerce(l)
		if strings.TrimSpace(l.Description) == "" && l.Quantity <= 0 {
			continue
		}
		out = append(out, l)
	}
	if len(out) == 0 {
		return nil, ErrNoJSON
	}
	return out, nil
}

// coerce ramène les champs aux valeurs du schéma quand le modèle s'en écarte.
func coerce(l lines.Line) lines.Line {
	switch l.Type {
	case lines.TypePiece, lines.TypeMainOeuvre, lines.TypeForfait:
	default:
		if l.Unit == lines.UnitHeure {
			l.Type = lines.TypeMainOeuvre
		} else {
			l.Type = lines.TypePiece
		}
	}
	switch l.Unit {
	case lines.UnitUnite, lines.UnitHeure:
	default:
		if l.Type == lines.TypeMainOeuvre {
			l.Unit = lines.UnitHeure
		} else {
			l.Unit = lines.UnitUnite
		}
	}
	if l.IsIncluded {
		l.UnitPriceHT = 0
	}
	if l.UnitPriceHT < 0 {
		l.UnitPriceHT = 0
	}
	return l
}

// extractArray isole le premier tableau JSON du texte, en ignorant les
// clôtures ```json éventuelles.
func extractArray(content string) string {
	content = strings.TrimSpace(content)
	if i := strings.Index(content, "```"); i >= 0 {
		rest := content[i+3:]
		rest = strings.TrimPrefix(rest, "json")
		if j := strings.Index(rest, "```"); j >= 0 {
			content = rest[:j]
		} else {
			content = rest
		}
	}
	start := strings.Index(content, "[")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		ch := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return content[start : i+1]
			}
		}
	}
	return ""
}
