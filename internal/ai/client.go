package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mkeita/garage-app/internal/lines"
)

// Generator produit des lignes de devis à partir d'une demande en texte libre.
// L'implémentation HTTP parle à une API compatible chat-completions; les tests
// injectent un faux générateur.
type Generator interface {
	GenerateLines(ctx context.Context, req GenerateRequest) ([]lines.Line, error)
}

// GenerateRequest porte le contexte transmis au modèle.
type GenerateRequest struct {
	Demande     string     // demande du client en texte libre
	Vehicule    string     // ex: "Peugeot 208 1.2 PureTech 2019, 85000 km"
	TauxHoraire float64    // taux horaire du garage, 0 si inconnu
	PrixConnus  []PrixHint // historique de prix du garage pour guider le modèle
}

// PrixHint est un prix déjà pratiqué par le garage pour un libellé donné.
type PrixHint struct {
	Label   string
	Type    string
	PrixHT  float64
}

var ErrEmptyCompletion = errors.New("ai: empty completion")

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Client appelle une API compatible OpenAI chat-completions.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
	}
}

func (c *Client) GenerateLines(ctx context.Context, req GenerateRequest) ([]lines.Line, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(req)},
		},
		Temperature: 0.2,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ai: send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("ai: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ai: api status %d: %s", resp.StatusCode, truncateBody(raw))
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return nil, fmt.Errorf("ai: parse response: %w", err)
	}
	if cr.Error != nil {
		return nil, fmt.Errorf("ai: api error: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		return nil, ErrEmptyCompletion
	}

	return ParseLines(cr.Choices[0].Message.Content)
}

func truncateBody(b []byte) string {
	const max = 500
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
