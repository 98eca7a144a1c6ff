package ai

import (
	"fmt"
	"strings"
)

const systemPrompt = `Tu es l'assistant d'un garage automobile français. À partir de la demande
du client, tu proposes les lignes d'un devis de réparation.

Réponds UNIQUEMENT avec un tableau JSON, sans texte autour. Chaque élément:
{
  "type": "piece" | "main_oeuvre" | "forfait",
  "description": "libellé clair en français",
  "quantity": nombre > 0 (heures pour la main d'oeuvre),
  "unit": "unite" | "heure",
  "unit_price_ht": prix unitaire HT en euros,
  "is_option": true si prestation optionnelle recommandée,
  "is_included": true si contrôle offert (alors unit_price_ht = 0)
}

Règles:
- unit = "heure" pour la main d'oeuvre, "unite" sinon.
- Des libellés complets, jamais tronqués.
- Les contrôles offerts (niveaux, pression pneus) en is_included avec prix 0.`

// BuildPrompt assemble le message utilisateur avec le contexte du garage.
func BuildPrompt(req GenerateRequest) string {
	var sb strings.Builder
	sb.WriteString("Demande du client: ")
	sb.WriteString(strings.TrimSpace(req.Demande))
	sb.WriteString("\n")
	if req.Vehicule != "" {
		sb.WriteString("Véhicule: ")
		sb.WriteString(req.Vehicule)
		sb.WriteString("\n")
	}
	if req.TauxHoraire > 0 {
		fmt.Fprintf(&sb, "Taux horaire main d'oeuvre du garage: %.2f € HT\n", req.TauxHoraire)
	}
	if len(req.PrixConnus) > 0 {
		sb.WriteString("Prix déjà pratiqués par ce garage (à réutiliser si pertinent):\n")
		for _, h := range req.PrixConnus {
			fmt.Fprintf(&sb, "- %s (%s): %.2f € HT\n", h.Label, h.Type, h.PrixHT)
		}
	}
	return sb.String()
}
