package voice

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/fmlopez2006-lgtm/prestige-foods/pkg/errors"
)

const liveEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

const voiceSystemInstruction = `Eres el Consultor Senior de Prestige Foods. Ayuda al usuario a vender pulpa de fruta colombiana premium. Sé profesional, cálido y utiliza un lenguaje ejecutivo colombiano. Responde de forma concisa y elegante.`

const voiceName = "Zephyr"

// Dialer opens the upstream duplex session.
type Dialer func(ctx context.Context) (Conn, error)

// GeminiDialer connects to the live endpoint and performs the setup
// handshake: audio-only responses, fixed voice, consultant persona.
func GeminiDialer(apiKey, model string) Dialer {
	return func(ctx context.Context) (Conn, error) {
		if apiKey == "" {
			return nil, errors.New(errors.ErrCodeConfig, "gemini api key is not configured")
		}

		url := fmt.Sprintf("%s?key=%s", liveEndpoint, apiKey)
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeVoice, "failed to connect to live endpoint")
		}

		setup := map[string]interface{}{
			"setup": map[string]interface{}{
				"model": fmt.Sprintf("models/%s", model),
				"generationConfig": map[string]interface{}{
					"responseModalities": []string{"AUDIO"},
					"speechConfig": map[string]interface{}{
						"voiceConfig": map[string]interface{}{
							"prebuiltVoiceConfig": map[string]interface{}{
								"voiceName": voiceName,
							},
						},
					},
				},
				"systemInstruction": map[string]interface{}{
					"parts": []map[string]interface{}{
						{"text": voiceSystemInstruction},
					},
				},
				"outputAudioTranscription": map[string]interface{}{},
			},
		}

		payload, err := json.Marshal(setup)
		if err != nil {
			conn.Close()
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to marshal setup message")
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			return nil, errors.Wrap(err, errors.ErrCodeVoice, "failed to send setup message")
		}

		// The server acks setup before streaming content.
		if _, _, err := conn.ReadMessage(); err != nil {
			conn.Close()
			return nil, errors.Wrap(err, errors.ErrCodeVoice, "setup was not acknowledged")
		}

		return conn, nil
	}
}
