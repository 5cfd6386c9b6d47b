package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmlopez2006-lgtm/prestige-foods/internal/deck"
	"github.com/fmlopez2006-lgtm/prestige-foods/pkg/errors"
)

func TestRender_LayoutVariants(t *testing.T) {
	base := deck.SlideRecord{
		ID:           7,
		Title:        "Origen",
		Subtitle:     "Colombia",
		BulletPoints: []string{"a", "b"},
		VisualPrompt: "moody fruit",
	}

	tests := []struct {
		layout    deck.LayoutType
		treatment string
		textSide  string
		quote     bool
	}{
		{deck.LayoutCover, ImageFullBleed, "", false},
		{deck.LayoutContentLeft, ImageSplit, "left", false},
		{deck.LayoutContentRight, ImageSplit, "right", false},
		{deck.LayoutQuote, ImageDimmed, "", true},
		{deck.LayoutClosing, ImageDimmed, "", false},
	}

	for _, tc := range tests {
		t.Run(string(tc.layout), func(t *testing.T) {
			rec := base
			rec.LayoutType = tc.layout

			view, err := Render(rec, true)
			require.NoError(t, err)

			assert.Equal(t, tc.layout, view.Layout)
			assert.Equal(t, tc.treatment, view.ImageTreatment)
			assert.Equal(t, tc.textSide, view.TextSide)
			assert.Equal(t, tc.quote, view.QuoteStyle)
			assert.True(t, view.IsActive)
			assert.NotEmpty(t, view.ImageURL)
			assert.Empty(t, view.VideoURL)
		})
	}
}

func TestRender_VideoSlide(t *testing.T) {
	rec := deck.SlideRecord{
		ID:         999,
		Title:      "El Origen del Sabor",
		LayoutType: deck.LayoutVideo,
		VideoURL:   "https://example.com/origen.mp4",
	}

	view, err := Render(rec, false)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/origen.mp4", view.VideoURL)
	assert.Equal(t, ImageNone, view.ImageTreatment)
	assert.Empty(t, view.ImageURL)
}

func TestRender_VideoSlideWithoutURL(t *testing.T) {
	rec := deck.SlideRecord{ID: 1, LayoutType: deck.LayoutVideo}

	_, err := Render(rec, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidReq))
}

func TestRender_UnknownLayout(t *testing.T) {
	rec := deck.SlideRecord{ID: 1, LayoutType: deck.LayoutType("bogus")}

	_, err := Render(rec, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidReq))
}

func TestRender_IsPure(t *testing.T) {
	rec := deck.SlideRecord{
		ID:           3,
		Title:        "Pureza",
		VisualPrompt: "glass bottle",
		LayoutType:   deck.LayoutQuote,
	}

	first, err := Render(rec, true)
	require.NoError(t, err)
	second, err := Render(rec, true)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestImageURL_SeededAndBiased(t *testing.T) {
	rec := deck.SlideRecord{ID: 42, VisualPrompt: "moody tropical fruit"}

	got := ImageURL(rec)
	assert.Equal(t, got, ImageURL(rec))
	assert.Contains(t, got, "sig=42")
	assert.Contains(t, got, "moody+tropical+fruit")
	assert.Contains(t, got, "luxury")

	other := rec
	other.ID = 43
	assert.NotEqual(t, got, ImageURL(other))
}

func TestRenderDeck_MarksOnlyCurrentActive(t *testing.T) {
	slides := deck.Deck{
		{ID: 1, LayoutType: deck.LayoutCover, VisualPrompt: "a"},
		{ID: 2, LayoutType: deck.LayoutContentLeft, VisualPrompt: "b"},
		{ID: 3, LayoutType: deck.LayoutClosing, VisualPrompt: "c"},
	}

	views, err := RenderDeck(slides, 1)
	require.NoError(t, err)
	require.Len(t, views, 3)

	for i, view := range views {
		assert.Equal(t, i == 1, view.IsActive, "slide %d", i)
	}
}

func TestRenderDeck_PropagatesSlideErrors(t *testing.T) {
	slides := deck.Deck{
		{ID: 1, LayoutType: deck.LayoutCover},
		{ID: 2, LayoutType: deck.LayoutVideo}, // no URL
	}

	_, err := RenderDeck(slides, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidReq))
}
