package parser

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/Belphemur/KodiPresence/internal/config"
	"github.com/Belphemur/KodiPresence/internal/models"
	"github.com/PuerkitoBio/goquery"
)

var imdbIDPattern = regexp.MustCompile(`imdb\.com/title/(tt\d+)/?`)

// IMDBTitleParser extracts the poster and identity of an IMDb title page from its Open Graph tags
type IMDBTitleParser struct{}

// NewIMDBTitleParser creates a new IMDb title page parser
func NewIMDBTitleParser() SingleResultParser[models.IMDBTitle] {
	return &IMDBTitleParser{}
}

// ParseHtml reads og:image, og:title and the canonical link of the page.
// A page without any of them yields an empty IMDBTitle and no error.
func (p *IMDBTitleParser) ParseHtml(body io.Reader) (models.IMDBTitle, error) {
	logger := config.GetLogger()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return models.IMDBTitle{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	result := models.IMDBTitle{
		Title:     strings.TrimSpace(metaContent(doc, "og:title")),
		PosterURL: strings.TrimSpace(metaContent(doc, "og:image")),
	}

	for _, href := range []string{doc.Find(`link[rel="canonical"]`).AttrOr("href", ""), metaContent(doc, "og:url")} {
		if id, err := extractIMDBIDFromURL(href); err == nil {
			result.ID = id
			break
		}
	}

	logger.Debug().
		Str("imdbId", result.ID).
		Str("title", result.Title).
		Str("poster", result.PosterURL).
		Msg("Parsed IMDb title page")

	return result, nil
}

func metaContent(doc *goquery.Document, property string) string {
	return doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).First().AttrOr("content", "")
}

// extractIMDBIDFromURL extracts the title ID from URLs like https://www.imdb.com/title/tt1375666/
func extractIMDBIDFromURL(href string) (string, error) {
	matches := imdbIDPattern.FindStringSubmatch(href)
	if len(matches) < 2 {
		return "", fmt.Errorf("no IMDB ID found in URL %q", href)
	}
	return matches[1], nil
}
