package gemini

import (
	"encoding/json"
	"fmt"

	"github.com/fmlopez2006-lgtm/prestige-foods/internal/deck"
	"github.com/fmlopez2006-lgtm/prestige-foods/pkg/errors"
)

// Fallbacks for malformed backend fields. Individual bad fields never
// fail a generation; only a response that is not an array at all does.
const (
	defaultTitle        = "Prestige"
	defaultBullet       = "Exclusividad garantizada"
	defaultVisualPrompt = "premium fruit"
)

// ClosingVideoSlide is appended after every successful generation. It is
// authored in-system and is the only record built with the video layout.
var ClosingVideoSlide = deck.SlideRecord{
	ID:           999,
	Title:        "El Origen del Sabor",
	Subtitle:     "Compromiso con la tierra colombiana",
	BulletPoints: []string{"Cosecha manual", "Fruta de exportación", "Proceso en frío"},
	VisualPrompt: "Colombian highlands agriculture",
	LayoutType:   deck.LayoutVideo,
	VideoURL:     "https://yquqoqyowinhmjtkoveo.supabase.co/storage/v1/object/public/imagenes/grok-video-1edf1c8b-3ed9-47a7-b5bd-75659e4ddacc.mp4",
}

// ParseSlides decodes the backend's JSON array, sanitizes every record,
// and appends the closing video slide. The backend text is untrusted:
// every field is coerced to its declared primitive type here, and nowhere
// else.
func ParseSlides(text string) (deck.Deck, error) {
	var raw []map[string]interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGeneration, "response is not a slide array")
	}

	slides := make(deck.Deck, 0, len(raw)+1)
	for i, item := range raw {
		slides = append(slides, sanitizeSlide(item, i))
	}
	slides = append(slides, ClosingVideoSlide)
	return slides, nil
}

func sanitizeSlide(item map[string]interface{}, index int) deck.SlideRecord {
	return deck.SlideRecord{
		ID:           coerceID(item["id"], index),
		Title:        coerceString(item["title"], defaultTitle),
		Subtitle:     coerceString(item["subtitle"], ""),
		BulletPoints: coerceBullets(item["bulletPoints"]),
		VisualPrompt: coerceString(item["visualPrompt"], defaultVisualPrompt),
		LayoutType:   coerceLayout(item["layoutType"]),
	}
}

// coerceID accepts any numeric value; everything else falls back to the
// slide's position.
func coerceID(v interface{}, index int) int {
	switch n := v.(type) {
	case float64:
		if n != 0 {
			return int(n)
		}
	case string:
		var parsed float64
		if _, err := fmt.Sscanf(n, "%g", &parsed); err == nil && parsed != 0 {
			return int(parsed)
		}
	}
	return index + 1
}

func coerceString(v interface{}, fallback string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fallback
}

// coerceBullets string-coerces every element; a missing or non-array
// field yields the placeholder list.
func coerceBullets(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return []string{defaultBullet}
	}
	bullets := make([]string, 0, len(raw))
	for _, b := range raw {
		if s, ok := b.(string); ok {
			bullets = append(bullets, s)
		} else {
			bullets = append(bullets, fmt.Sprint(b))
		}
	}
	return bullets
}

// coerceLayout validates against the closed enum. The video layout is
// reserved for the authored closing slide, so it is not accepted from
// the backend.
func coerceLayout(v interface{}) deck.LayoutType {
	s, ok := v.(string)
	if !ok {
		return deck.DefaultLayout
	}
	layout := deck.LayoutType(s)
	if layout == deck.LayoutVideo {
		return deck.DefaultLayout
	}
	return layout.Normalize()
}
