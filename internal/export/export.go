// Package export renders briefings as Markdown documents or standalone
// HTML pages.
package export

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/brevita-ai/brevita/internal/briefing"
)

var md = goldmark.New()

// Markdown renders a briefing as a Markdown document.
func Markdown(b *briefing.Briefing) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", b.Meta.Title)

	var metaLines []string
	if b.Meta.Source != "" {
		metaLines = append(metaLines, "**Source:** "+b.Meta.Source)
	}
	if b.Meta.Date != "" {
		metaLines = append(metaLines, "**Date:** "+b.Meta.Date)
	}
	metaLines = append(metaLines, "**Category:** "+b.Meta.Category)
	if b.Meta.ReliabilityScore != nil {
		metaLines = append(metaLines, fmt.Sprintf("**Reliability:** %d/100", *b.Meta.ReliabilityScore))
	}
	if b.Meta.ReadingTimeSeconds > 0 {
		metaLines = append(metaLines, fmt.Sprintf("**Reading time:** ~%ds", b.Meta.ReadingTimeSeconds))
	}
	sb.WriteString(strings.Join(metaLines, " · "))
	sb.WriteString("\n\n")

	sb.WriteString("## Summary\n\n")
	sb.WriteString(b.Summary)
	sb.WriteString("\n")

	if len(b.KeyPoints) > 0 {
		sb.WriteString("\n## Key Points\n\n")
		for _, p := range b.KeyPoints {
			sb.WriteString("- " + p + "\n")
		}
	}

	if b.ContextNotes != "" {
		sb.WriteString("\n## Context\n\n" + b.ContextNotes + "\n")
	}
	if b.BiasNotes != "" {
		sb.WriteString("\n## Bias & Uncertainty\n\n" + b.BiasNotes + "\n")
	}

	if b.MilitaryMode.IsIncluded {
		sb.WriteString("\n---\n\n## OSINT Analysis\n\n")
		if b.MilitaryMode.RiskLevel != "" {
			sb.WriteString("**Risk level:** " + b.MilitaryMode.RiskLevel + "\n\n")
		}
		if b.MilitaryMode.CommanderBrief != "" {
			sb.WriteString(b.MilitaryMode.CommanderBrief + "\n")
		}
		writeList(&sb, "Actors", b.MilitaryMode.Actors)
		writeList(&sb, "Theaters", b.MilitaryMode.TheaterTags)
		writeList(&sb, "Domains", b.MilitaryMode.DomainTags)
		writeSection(&sb, "Interests & Objectives", b.MilitaryMode.Objectives)
		writeSection(&sb, "Timeline", b.MilitaryMode.Timeline)
		writeSection(&sb, "Risks & Threats", b.MilitaryMode.Risks)
		writeSection(&sb, "Operational Implications", b.MilitaryMode.OperationalImplications)
		writeSection(&sb, "Tech & AI Relevance", b.MilitaryMode.TechRelevance)
		writeList(&sb, "Watchpoints", b.MilitaryMode.Watchpoints)
	}

	if len(b.Meta.Entities) > 0 {
		sb.WriteString("\n## Entities\n\n")
		for _, e := range b.Meta.Entities {
			line := fmt.Sprintf("- **%s** (%s)", e.Name, e.Type)
			if e.Sentiment != "" {
				line += " · " + e.Sentiment
			}
			sb.WriteString(line + "\n")
		}
	}

	if len(b.GroundingSources) > 0 {
		sb.WriteString("\n## Sources\n\n")
		for _, s := range b.GroundingSources {
			title := s.Title
			if title == "" {
				title = s.URI
			}
			fmt.Fprintf(&sb, "- [%s](%s)\n", title, s.URI)
		}
	}

	return sb.String()
}

func writeList(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("\n### " + heading + "\n\n")
	for _, it := range items {
		sb.WriteString("- " + it + "\n")
	}
}

func writeSection(sb *strings.Builder, heading, text string) {
	if text == "" {
		return
	}
	sb.WriteString("\n### " + heading + "\n\n" + text + "\n")
}

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, sans-serif; max-width: 44rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.6; color: #1a1a1a; }
h1, h2, h3 { line-height: 1.25; }
hr { border: none; border-top: 1px solid #ddd; margin: 2rem 0; }
a { color: #0b57d0; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`

var htmlTmpl = template.Must(template.New("page").Parse(htmlPage))

// HTML renders a briefing as a standalone HTML page.
func HTML(b *briefing.Briefing) (string, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(b)), &body); err != nil {
		return "", fmt.Errorf("rendering briefing: %w", err)
	}

	var page bytes.Buffer
	err := htmlTmpl.Execute(&page, struct {
		Title string
		Body  template.HTML
	}{
		Title: b.Meta.Title,
		Body:  template.HTML(body.String()), //nolint: gosec
	})
	if err != nil {
		return "", fmt.Errorf("rendering page: %w", err)
	}
	return page.String(), nil
}
