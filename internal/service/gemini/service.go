package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fmlopez2006-lgtm/prestige-foods/internal/deck"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/infra/httpclient"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/infra/logger"
	"github.com/fmlopez2006-lgtm/prestige-foods/pkg/errors"
)

const baseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Persona and prompt are fixed: the deck is always the Prestige Foods
// master strategy.
const systemInstruction = `Eres un Director Creativo de una agencia de branding de lujo en Colombia.
Tu estilo visual es editorial, minimalista y de alto contraste (estilo revista Monocle o Kinfolk).
Diseñas presentaciones para 'Prestige Foods' (pulpas de fruta premium).
Estructura la presentación con una narrativa de exclusividad.
IMPORTANTE: El campo 'visualPrompt' debe ser una descripción artística corta en inglés para buscar una imagen de stock (ej: "moody tropical fruit dark background", "luxury food photography glass bottle").`

const presentationPrompt = "Crea una presentación maestra de 10 diapositivas para Prestige Foods. Enfócate en la superioridad del origen colombiano, la pureza del producto y la sofisticación del proceso de exportación."

type Service struct {
	apiKey     string
	model      string
	chatModel  string
	baseURL    string
	httpClient *httpclient.Client
	logger     *logger.Logger
}

func New(apiKey, model, chatModel string, client *httpclient.Client, log *logger.Logger) *Service {
	return &Service{
		apiKey:     apiKey,
		model:      model,
		chatModel:  chatModel,
		baseURL:    baseURL,
		httpClient: client,
		logger:     log,
	}
}

// GeneratePresentation asks the backend for the slide sequence, sanitizes
// every record, and appends the authored closing video slide. The result
// is never empty.
func (s *Service) GeneratePresentation(ctx context.Context) (deck.Deck, error) {
	if s.apiKey == "" {
		return nil, errors.New(errors.ErrCodeConfig, "gemini api key is not configured")
	}

	requestBody := map[string]interface{}{
		"systemInstruction": map[string]interface{}{
			"parts": []map[string]interface{}{
				{"text": systemInstruction},
			},
		},
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{"text": presentationPrompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature":      0.7,
			"responseMimeType": "application/json",
			"responseSchema":   slideResponseSchema(),
		},
	}

	bodyBytes, err := json.Marshal(requestBody)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to marshal request")
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)

	resp, err := s.httpClient.PostJSON(ctx, url, bodyBytes)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGeneration, "gemini API request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGeneration, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("gemini API error", "status", resp.StatusCode, "body", string(respBody))
		return nil, errors.New(errors.ErrCodeGeneration, fmt.Sprintf("gemini API returned %d", resp.StatusCode))
	}

	text, err := extractText(respBody)
	if err != nil {
		return nil, err
	}

	slides, err := ParseSlides(text)
	if err != nil {
		return nil, err
	}

	s.logger.Info("presentation generated", "slides", len(slides))
	return slides, nil
}

// slideResponseSchema is the structured-output contract: an array of slide
// objects. The backend may still return garbage inside it, so parsing
// never trusts field types.
func slideResponseSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "ARRAY",
		"items": map[string]interface{}{
			"type": "OBJECT",
			"properties": map[string]interface{}{
				"id":       map[string]interface{}{"type": "INTEGER"},
				"title":    map[string]interface{}{"type": "STRING"},
				"subtitle": map[string]interface{}{"type": "STRING"},
				"bulletPoints": map[string]interface{}{
					"type":  "ARRAY",
					"items": map[string]interface{}{"type": "STRING"},
				},
				"visualPrompt": map[string]interface{}{
					"type":        "STRING",
					"description": "Keywords en inglés para fotografía de stock de lujo",
				},
				"layoutType": map[string]interface{}{
					"type": "STRING",
					"enum": []string{"cover", "content-left", "content-right", "quote", "closing"},
				},
			},
			"required": []string{"id", "title", "subtitle", "bulletPoints", "visualPrompt", "layoutType"},
		},
	}
}

// extractText pulls the first candidate's text out of a generateContent
// response and strips markdown fences.
func extractText(body []byte) (string, error) {
	var response struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeGeneration, "failed to parse gemini response")
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", errors.New(errors.ErrCodeGeneration, "empty response from gemini")
	}

	text := response.Candidates[0].Content.Parts[0].Text
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if text == "" {
		return "", errors.New(errors.ErrCodeGeneration, "empty response from gemini")
	}
	return text, nil
}
