// Package export renders a deck into a standalone printable HTML
// document and saves it under the served files directory.
package export

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/fmlopez2006-lgtm/prestige-foods/internal/deck"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/infra/logger"
	"github.com/fmlopez2006-lgtm/prestige-foods/internal/render"
	"github.com/fmlopez2006-lgtm/prestige-foods/pkg/errors"
)

type Service struct {
	basePath string
	baseURL  string
	logger   *logger.Logger
}

func New(basePath, baseURL string, log *logger.Logger) *Service {
	return &Service{
		basePath: basePath,
		baseURL:  baseURL,
		logger:   log,
	}
}

// ExportDeck writes the rendered deck as one HTML document and returns
// its served URL. The document marks every slide active so printing
// shows all of them.
func (s *Service) ExportDeck(ctx context.Context, id string, slides deck.Deck) (string, error) {
	views := make([]render.SlideView, 0, len(slides))
	for _, rec := range slides {
		view, err := render.Render(rec, true)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeExport, "failed to render slide")
		}
		views = append(views, view)
	}

	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, documentData{Slides: views}); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeExport, "failed to build document")
	}

	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorage, "failed to create output directory")
	}

	filename := fmt.Sprintf("%s.html", id)
	filePath := filepath.Join(s.basePath, filename)
	if err := os.WriteFile(filePath, buf.Bytes(), 0644); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorage, "failed to write document")
	}

	url := fmt.Sprintf("%s/%s", s.baseURL, filename)
	s.logger.Info("deck exported", "path", filePath, "url", url, "slides", len(views))
	return url, nil
}

type documentData struct {
	Slides []render.SlideView
}

var documentTemplate = template.Must(template.New("deck").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>Prestige Foods — Estrategia Maestra</title>
<style>
  body { background: #0b0f0d; color: #f4ead9; font-family: Georgia, serif; margin: 0; }
  .slide { page-break-after: always; min-height: 100vh; padding: 6rem 8rem; box-sizing: border-box; }
  .slide img { max-width: 100%; }
  h1 { font-size: 3.5rem; margin: 0 0 1rem; }
  h2 { font-style: italic; color: #b87333; font-weight: normal; }
  ul { line-height: 1.9; }
  .quote h1 { font-style: italic; }
  .quote h2 { text-transform: uppercase; letter-spacing: 0.4em; font-size: 0.8rem; }
  .counter { color: #b8733355; font-size: 0.8rem; }
</style>
</head>
<body>
{{range $i, $s := .Slides}}
<section class="slide {{$s.Layout}}{{if $s.QuoteStyle}} quote{{end}}">
  <p class="counter">{{printf "%02d" $s.ID}}</p>
  <h1>{{$s.Title}}</h1>
  <h2>{{$s.Subtitle}}</h2>
  {{if $s.BulletPoints}}<ul>{{range $s.BulletPoints}}<li>{{.}}</li>{{end}}</ul>{{end}}
  {{if $s.ImageURL}}<img src="{{$s.ImageURL}}" alt="">{{end}}
  {{if $s.VideoURL}}<video src="{{$s.VideoURL}}" controls muted loop></video>{{end}}
</section>
{{end}}
</body>
</html>
`))
