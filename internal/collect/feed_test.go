package collect

import (
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
)

func TestParseItem(t *testing.T) {
	pub := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	item := &gofeed.Item{
		Link:            "https://example.com/story",
		Title:           "  A Story  ",
		PublishedParsed: &pub,
		Description:     "<p>Some &amp; short teaser</p>",
	}

	c := parseItem(item, "Example")
	if c == nil {
		t.Fatal("expected a candidate")
	}
	if c.Title != "A Story" {
		t.Errorf("expected trimmed title, got %q", c.Title)
	}
	if c.PublishedDate != "2026-08-29" {
		t.Errorf("expected date 2026-08-29, got %q", c.PublishedDate)
	}
	if c.Content != "Some & short teaser" {
		t.Errorf("expected stripped content, got %q", c.Content)
	}
	if c.Source != "Example" {
		t.Errorf("expected source Example, got %q", c.Source)
	}
}

func TestParseItemSkipsUnusable(t *testing.T) {
	if parseItem(&gofeed.Item{Title: "No link"}, "X") != nil {
		t.Error("expected nil for item without URL")
	}
	if parseItem(&gofeed.Item{Link: "https://example.com"}, "X") != nil {
		t.Error("expected nil for item without title")
	}
}

func TestToRequest(t *testing.T) {
	c := &Candidate{
		URL:           "https://example.com/story",
		Title:         "A Story",
		Source:        "Example",
		PublishedDate: "2026-08-29",
		Content:       "short teaser",
	}

	req := c.ToRequest()
	if req.Article != "" {
		t.Error("short teaser should not be treated as article text")
	}
	if req.URL != c.URL || req.Title != c.Title {
		t.Errorf("metadata not carried: %+v", req)
	}

	c.Content = strings.Repeat("full article body text ", 30)
	req = c.ToRequest()
	if req.Article == "" {
		t.Error("full-body feed content should be carried as article text")
	}
}

func TestIsWithinWindow(t *testing.T) {
	cutoff := time.Now().AddDate(0, 0, -3)

	recent := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	if !isWithinWindow(recent, cutoff) {
		t.Error("recent date should be within window")
	}

	old := time.Now().AddDate(0, 0, -10).Format("2006-01-02")
	if isWithinWindow(old, cutoff) {
		t.Error("old date should be outside window")
	}

	if !isWithinWindow("", cutoff) {
		t.Error("missing date should pass")
	}
	if !isWithinWindow("not-a-date", cutoff) {
		t.Error("unparseable date should pass")
	}
}

func TestStripHTML(t *testing.T) {
	got := stripHTML(`<p>Hello <b>world</b> &quot;quoted&quot;   and&nbsp;spaced</p>`)
	want := `Hello world "quoted" and spaced`
	if got != want {
		t.Errorf("stripHTML = %q, want %q", got, want)
	}
}

func TestExtractSourceName(t *testing.T) {
	cases := map[string]string{
		"https://rss.nytimes.com/services/xml/rss/nyt/World.xml": "Nytimes",
		"https://www.aljazeera.com/xml/rss/all.xml":              "Aljazeera",
		"https://feeds.arstechnica.com/arstechnica/":             "Arstechnica",
	}
	for feedURL, want := range cases {
		if got := extractSourceName(feedURL); got != want {
			t.Errorf("extractSourceName(%q) = %q, want %q", feedURL, got, want)
		}
	}
}
