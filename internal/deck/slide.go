package deck

// LayoutType selects the visual arrangement of a slide.
type LayoutType string

const (
	LayoutCover        LayoutType = "cover"
	LayoutContentLeft  LayoutType = "content-left"
	LayoutContentRight LayoutType = "content-right"
	LayoutQuote        LayoutType = "quote"
	LayoutClosing      LayoutType = "closing"
	LayoutVideo        LayoutType = "video"
)

// DefaultLayout is the fallback for unrecognized layout values coming
// from the generation backend.
const DefaultLayout = LayoutContentLeft

var validLayouts = map[LayoutType]bool{
	LayoutCover:        true,
	LayoutContentLeft:  true,
	LayoutContentRight: true,
	LayoutQuote:        true,
	LayoutClosing:      true,
	LayoutVideo:        true,
}

// Valid reports whether l is one of the six known layouts.
func (l LayoutType) Valid() bool {
	return validLayouts[l]
}

// Normalize returns l if valid, DefaultLayout otherwise.
func (l LayoutType) Normalize() LayoutType {
	if l.Valid() {
		return l
	}
	return DefaultLayout
}

// SlideRecord is one slide's sanitized content and layout selector.
// Every field is a primitive string/number/[]string; the sanitization
// step in the generation client is the single point enforcing that.
// Records are immutable once built.
type SlideRecord struct {
	ID           int        `json:"id"`
	Title        string     `json:"title"`
	Subtitle     string     `json:"subtitle"`
	BulletPoints []string   `json:"bulletPoints"`
	VisualPrompt string     `json:"visualPrompt"`
	LayoutType   LayoutType `json:"layoutType"`
	VideoURL     string     `json:"videoUrl,omitempty"`
}

// Deck is the ordered slide sequence produced by one generation call.
// It is replaced wholesale, never mutated in place.
type Deck []SlideRecord
