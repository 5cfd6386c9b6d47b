package gemini

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fmlopez2006-lgtm/prestige-foods/internal/chat"
	"github.com/fmlopez2006-lgtm/prestige-foods/pkg/errors"
)

const chatSystemInstruction = `Eres el Consultor Senior de Exportaciones de Prestige Foods. Tu misión es ayudar al usuario a vender pulpa de fruta colombiana premium en el mundo. Eres sofisticado, experto en mercados internacionales y usas un lenguaje profesional con calidez colombiana. Si te preguntan por frutas, destaca el Lulo, la Gulupa y la Guanábana como joyas de exportación.`

// StreamChat sends the conversation history and invokes onChunk for every
// incremental text chunk, in arrival order, until the stream ends. An
// error from onChunk aborts the stream.
func (s *Service) StreamChat(ctx context.Context, history []chat.Message, onChunk func(chunk string) error) error {
	if s.apiKey == "" {
		return errors.New(errors.ErrCodeConfig, "gemini api key is not configured")
	}

	contents := make([]map[string]interface{}, 0, len(history))
	for _, msg := range history {
		contents = append(contents, map[string]interface{}{
			"role": string(msg.Role),
			"parts": []map[string]interface{}{
				{"text": msg.Text},
			},
		})
	}

	requestBody := map[string]interface{}{
		"systemInstruction": map[string]interface{}{
			"parts": []map[string]interface{}{
				{"text": chatSystemInstruction},
			},
		},
		"contents": contents,
	}

	bodyBytes, err := json.Marshal(requestBody)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to marshal chat request")
	}

	url := fmt.Sprintf("%s/%s:streamGenerateContent?alt=sse&key=%s", s.baseURL, s.chatModel, s.apiKey)

	resp, err := s.httpClient.StreamJSON(ctx, url, bodyBytes)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeGeneration, "chat stream request failed")
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			continue
		}

		chunk, ok := extractChunk([]byte(payload))
		if !ok {
			continue
		}
		if err := onChunk(chunk); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeGeneration, "chat stream interrupted")
	}
	return nil
}

func extractChunk(payload []byte) (string, bool) {
	var event struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return "", false
	}
	if len(event.Candidates) == 0 || len(event.Candidates[0].Content.Parts) == 0 {
		return "", false
	}
	return event.Candidates[0].Content.Parts[0].Text, true
}
