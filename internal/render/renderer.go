// Package render maps slide records to layout view models. Rendering is
// pure: same record, same view, no side effects.
package render

import (
	"fmt"
	"net/url"

	"github.com/fmlopez2006-lgtm/prestige-foods/internal/deck"
	"github.com/fmlopez2006-lgtm/prestige-foods/pkg/errors"
)

// imageSearchSuffix biases the seeded image lookup toward the brand's
// editorial photography style.
const imageSearchSuffix = ", luxury, organic, fruit, moody"

const imageBaseURL = "https://source.unsplash.com/featured/1600x900"

// Image treatments per layout variant.
const (
	ImageFullBleed = "full-bleed"
	ImageDimmed    = "dimmed"
	ImageSplit     = "split"
	ImageNone      = "none"
)

// SlideView is the visual contract for one rendered slide. Which fields
// are meaningful depends on Layout: split layouts set TextSide, the video
// layout carries VideoURL instead of ImageURL.
type SlideView struct {
	ID             int             `json:"id"`
	Layout         deck.LayoutType `json:"layout"`
	IsActive       bool            `json:"isActive"`
	Title          string          `json:"title"`
	Subtitle       string          `json:"subtitle"`
	BulletPoints   []string        `json:"bulletPoints"`
	ImageURL       string          `json:"imageUrl,omitempty"`
	ImageTreatment string          `json:"imageTreatment"`
	TextSide       string          `json:"textSide,omitempty"`
	VideoURL       string          `json:"videoUrl,omitempty"`
	QuoteStyle     bool            `json:"quoteStyle,omitempty"`
}

// Render maps a slide record and its active flag to a view. The record
// must already be sanitized; a video slide without a URL is a contract
// violation.
func Render(rec deck.SlideRecord, isActive bool) (SlideView, error) {
	view := SlideView{
		ID:           rec.ID,
		Layout:       rec.LayoutType,
		IsActive:     isActive,
		Title:        rec.Title,
		Subtitle:     rec.Subtitle,
		BulletPoints: rec.BulletPoints,
	}

	switch rec.LayoutType {
	case deck.LayoutCover:
		view.ImageURL = ImageURL(rec)
		view.ImageTreatment = ImageFullBleed
	case deck.LayoutContentLeft:
		view.ImageURL = ImageURL(rec)
		view.ImageTreatment = ImageSplit
		view.TextSide = "left"
	case deck.LayoutContentRight:
		view.ImageURL = ImageURL(rec)
		view.ImageTreatment = ImageSplit
		view.TextSide = "right"
	case deck.LayoutQuote:
		view.ImageURL = ImageURL(rec)
		view.ImageTreatment = ImageDimmed
		view.QuoteStyle = true
	case deck.LayoutClosing:
		view.ImageURL = ImageURL(rec)
		view.ImageTreatment = ImageDimmed
	case deck.LayoutVideo:
		if rec.VideoURL == "" {
			return SlideView{}, errors.New(errors.ErrCodeInvalidReq, "video slide without video URL")
		}
		view.VideoURL = rec.VideoURL
		view.ImageTreatment = ImageNone
	default:
		return SlideView{}, errors.New(errors.ErrCodeInvalidReq, fmt.Sprintf("unknown layout %q", rec.LayoutType))
	}

	return view, nil
}

// RenderDeck renders every slide, marking only currentIndex active.
// Inactive slides are rendered too so the client can animate between
// consecutive active states without refetching.
func RenderDeck(slides deck.Deck, currentIndex int) ([]SlideView, error) {
	views := make([]SlideView, 0, len(slides))
	for i, rec := range slides {
		view, err := Render(rec, i == currentIndex)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// ImageURL builds the background image URL for a slide. The slide id is
// the seed, so repeated renders of the same slide resolve to the same
// image.
func ImageURL(rec deck.SlideRecord) string {
	terms := url.QueryEscape(rec.VisualPrompt + imageSearchSuffix)
	return fmt.Sprintf("%s?%s&sig=%d", imageBaseURL, terms, rec.ID)
}
