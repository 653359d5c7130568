package parser

import (
	"strings"
	"testing"
)

func TestIMDBTitleParser_ParseHtml(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		html       string
		wantID     string
		wantTitle  string
		wantPoster string
	}{
		{
			name: "full open graph",
			html: `<html><head>
				<link rel="canonical" href="https://www.imdb.com/title/tt1375666/">
				<meta property="og:title" content="Inception (2010) ⭐ 8.8 | Action, Adventure, Sci-Fi">
				<meta property="og:image" content="https://m.media-amazon.com/images/M/inception.jpg">
			</head><body></body></html>`,
			wantID:     "tt1375666",
			wantTitle:  "Inception (2010) ⭐ 8.8 | Action, Adventure, Sci-Fi",
			wantPoster: "https://m.media-amazon.com/images/M/inception.jpg",
		},
		{
			name: "id from og:url",
			html: `<html><head>
				<meta property="og:url" content="https://www.imdb.com/title/tt0903747/">
				<meta property="og:image" content=" https://m.media-amazon.com/images/M/bb.jpg ">
			</head></html>`,
			wantID:     "tt0903747",
			wantPoster: "https://m.media-amazon.com/images/M/bb.jpg",
		},
		{
			name: "no open graph",
			html: `<html><head><title>IMDb</title></head><body><p>Not found</p></body></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := NewIMDBTitleParser().ParseHtml(strings.NewReader(tt.html))
			if err != nil {
				t.Fatalf("ParseHtml failed: %v", err)
			}
			if got.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", got.ID, tt.wantID)
			}
			if got.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", got.Title, tt.wantTitle)
			}
			if got.PosterURL != tt.wantPoster {
				t.Errorf("PosterURL = %q, want %q", got.PosterURL, tt.wantPoster)
			}
		})
	}
}

func TestExtractIMDBIDFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		href    string
		want    string
		wantErr bool
	}{
		{href: "http://www.imdb.com/title/tt14261112/", want: "tt14261112"},
		{href: "https://m.imdb.com/title/tt0903747", want: "tt0903747"},
		{href: "https://www.imdb.com/name/nm0000138/", wantErr: true},
		{href: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := extractIMDBIDFromURL(tt.href)
		if (err != nil) != tt.wantErr {
			t.Errorf("extractIMDBIDFromURL(%q) error = %v, wantErr %v", tt.href, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("extractIMDBIDFromURL(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}
