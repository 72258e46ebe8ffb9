package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vanderheijden86/permitflow/pkg/citation"
	"github.com/vanderheijden86/permitflow/pkg/loader"
	"github.com/vanderheijden86/permitflow/pkg/model"
)

// Package-level compiled regex for slug creation (avoids recompilation per call)
var slugNonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9]+`)

// visualizationWidth is the cell width visualizations are drawn at inside
// fenced blocks.
const visualizationWidth = 72

// GenerateMarkdown renders the whole data set as one markdown handbook:
// every workflow, the test scenarios and the source documents.
func GenerateMarkdown(ds *loader.Dataset) string {
	var sb strings.Builder

	sb.WriteString("# Permit Workflows\n\n")
	sb.WriteString(fmt.Sprintf("%d workflows, %d source documents.\n\n", len(ds.Workflows), ds.Citations.Len()))

	// Precompute stable, unique slugs for TOC anchors and headings.
	cats := append(append([]model.Category(nil), ds.Workflows...), ds.Tests)
	slugCounts := make(map[string]int, len(cats)+1)
	slugs := make([]string, len(cats))
	for i, c := range cats {
		slugs[i] = uniqueSlug(createSlug(categoryHeading(c)), slugCounts)
	}
	docsSlug := uniqueSlug(createSlug("Source Documents"), slugCounts)

	sb.WriteString("## Table of Contents\n\n")
	for i, c := range cats {
		sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", categoryHeading(c), slugs[i]))
	}
	sb.WriteString(fmt.Sprintf("- [Source Documents](#%s)\n\n", docsSlug))

	for i, c := range cats {
		testView := i == len(cats)-1
		writeCategory(&sb, c, ds.Citations, 2, testView)
	}

	sb.WriteString("## Source Documents\n\n")
	writeDocuments(&sb, ds.Citations.All())
	return sb.String()
}

// WorkflowMarkdown renders a single category with a level-one heading.
func WorkflowMarkdown(c model.Category, reg *citation.Registry, testView bool) string {
	var sb strings.Builder
	writeCategory(&sb, c, reg, 1, testView)
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// DocumentsMarkdown renders the citation registry as a markdown list.
func DocumentsMarkdown(reg *citation.Registry) string {
	var sb strings.Builder
	sb.WriteString("# Source Documents\n\n")
	writeDocuments(&sb, reg.All())
	return sb.String()
}

func categoryHeading(c model.Category) string {
	return strings.TrimSpace(c.Icon + " " + c.Title)
}

func writeCategory(sb *strings.Builder, c model.Category, reg *citation.Registry, level int, testView bool) {
	h := strings.Repeat("#", level)
	sb.WriteString(fmt.Sprintf("%s %s\n\n", h, categoryHeading(c)))
	if c.Description != "" {
		sb.WriteString(c.Description + "\n\n")
	}
	for _, s := range c.Sections {
		writeSection(sb, s, reg, level+1, testView)
	}
}

// writeSection mirrors the terminal renderer: unknown content and non-info
// sections in the test view produce nothing.
func writeSection(sb *strings.Builder, s model.Section, reg *citation.Registry, level int, testView bool) {
	if testView {
		if info, ok := s.Content.(model.InfoContent); ok {
			writeHeading(sb, s, nil, level)
			writeScenarios(sb, info, reg)
		}
		return
	}

	switch c := s.Content.(type) {
	case model.StepsContent:
		writeHeading(sb, s, reg, level)
		for _, st := range c.Steps {
			sb.WriteString(fmt.Sprintf("- **%d. %s**", st.ID, escapeInline(st.Title)))
			meta := []string{string(st.Responsible)}
			if st.Duration != "" {
				meta = append(meta, st.Duration)
			}
			sb.WriteString(fmt.Sprintf(" _(%s)_\n", strings.Join(meta, ", ")))
			if st.Description != "" {
				sb.WriteString("  " + st.Description + "\n")
			}
		}
		sb.WriteString("\n")

	case model.InfoContent:
		writeHeading(sb, s, reg, level)
		for _, item := range c.Items {
			if item.Title != "" {
				sb.WriteString(fmt.Sprintf("**%s**\n\n", escapeInline(item.Title)))
			}
			if item.Description != "" {
				sb.WriteString("_" + item.Description + "_\n\n")
			}
			if item.Details != "" {
				sb.WriteString(hardBreaks(item.Details) + "\n\n")
			}
			if item.Visualization != nil {
				if vis := item.Visualization.Render(visualizationWidth); vis != "" {
					sb.WriteString("```text\n" + vis + "\n```\n\n")
				}
			}
			writeSource(sb, item.Citation, reg)
		}

	case model.TableContent:
		writeHeading(sb, s, reg, level)
		writeTable(sb, c.Table)
		writeSource(sb, c.Table.Citation, reg)
	}
}

func writeHeading(sb *strings.Builder, s model.Section, reg *citation.Registry, level int) {
	sb.WriteString(fmt.Sprintf("%s %s\n\n", strings.Repeat("#", level), s.Title))
	if s.Description != "" {
		sb.WriteString(s.Description + "\n\n")
	}
	if reg != nil {
		writeSource(sb, s.Citation, reg)
	}
}

func writeScenarios(sb *strings.Builder, info model.InfoContent, reg *citation.Registry) {
	for _, item := range info.Items {
		sb.WriteString(fmt.Sprintf("**%s**\n\n", escapeInline(item.Title)))
		if item.Description != "" {
			sb.WriteString("_" + item.Description + "_\n\n")
		}
		writeSource(sb, item.Citation, reg)
		for _, sub := range item.SubItems {
			sb.WriteString(fmt.Sprintf("- **%s**: %s", escapeInline(sub.Title), strings.ReplaceAll(sub.Details, "\n", " ")))
			if src := sourceLine(sub.Citation, reg); src != "" {
				sb.WriteString(" (" + src + ")")
			}
			sb.WriteString("\n")
		}
		if len(item.SubItems) > 0 {
			sb.WriteString("\n")
		}
	}
}

// writeSource appends the citation line when c resolves; a dangling reference
// is left out.
func writeSource(sb *strings.Builder, c *model.Citation, reg *citation.Registry) {
	if src := sourceLine(c, reg); src != "" {
		sb.WriteString("> Source: " + src + "\n\n")
	}
}

func sourceLine(c *model.Citation, reg *citation.Registry) string {
	rec, ok := reg.ResolveCitation(c)
	if !ok {
		return ""
	}
	out := fmt.Sprintf("[%s](%s)", rec.DisplayName(), rec.URL)
	if c.Page != "" {
		out += ", p. " + c.Page
	}
	return out
}

func writeTable(sb *strings.Builder, t model.TableData) {
	if len(t.Headers) == 0 {
		return
	}
	row := func(cells []string) {
		esc := make([]string, len(cells))
		for i, c := range cells {
			esc[i] = escapeCell(c)
		}
		sb.WriteString("| " + strings.Join(esc, " | ") + " |\n")
	}
	row(t.Headers)
	sep := make([]string, len(t.Headers))
	for i := range sep {
		sep[i] = "---"
	}
	sb.WriteString("|" + strings.Join(sep, "|") + "|\n")
	for _, r := range t.NormalizedRows() {
		row(r)
	}
	sb.WriteString("\n")
}

func writeDocuments(sb *strings.Builder, records []model.CitationRecord) {
	for _, rec := range records {
		sb.WriteString(fmt.Sprintf("- **%s**: %s [View PDF](%s)\n", rec.DisplayName(), rec.APA, rec.URL))
	}
	sb.WriteString("\n")
}

// hardBreaks keeps the line structure of details text in rendered markdown.
func hardBreaks(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) != "" && i < len(lines)-1 && strings.TrimSpace(lines[i+1]) != "" {
			lines[i] = l + "  "
		}
	}
	return strings.Join(lines, "\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", "<br>")
}

func escapeInline(s string) string {
	return strings.ReplaceAll(s, "*", `\*`)
}

func uniqueSlug(base string, counts map[string]int) string {
	if base == "" {
		base = "section"
	}
	if count, ok := counts[base]; ok {
		count++
		counts[base] = count
		return fmt.Sprintf("%s-%d", base, count)
	}
	counts[base] = 0
	return base
}

// createSlug creates a URL-friendly slug from heading text.
func createSlug(text string) string {
	slug := strings.ToLower(text)
	slug = slugNonAlphanumericRegex.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
