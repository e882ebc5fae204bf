package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var ErrEmptyDocument = errors.New("document has no text")

const criteriaMarker = "acceptance criteria"

const (
	headingSelector = "h1, h2, h3, h4, h5, h6"
	markerSelector  = "h1, h2, h3, h4, h5, h6, p, strong, b"
)

// ParseRenderedDescription splits a rendered ticket description into free text and acceptance
// criteria. Criteria are the list items or paragraphs that follow an "Acceptance Criteria"
// heading, up to the next heading. Both results are newline separated.
func ParseRenderedDescription(html string) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", fmt.Errorf("data cannot be parsed as HTML: %w", err)
	}

	body := doc.Find("body")
	if normalize(body.Text()) == "" {
		return "", "", ErrEmptyDocument
	}

	var criteria []string

	if marker := findMarker(body); marker != nil {
		if inline := inlineCriteria(marker.Text()); inline != "" {
			criteria = append(criteria, inline)
		}

		section := marker
		for next := marker.Next(); next.Length() > 0; next = next.Next() {
			if next.Is(headingSelector) {
				break
			}
			criteria = append(criteria, blockLines(next)...)
			section = section.AddSelection(next)
		}

		section.Remove()
	}

	var description []string
	body.Contents().Each(func(_ int, node *goquery.Selection) {
		description = append(description, blockLines(node)...)
	})

	return strings.Join(description, "\n"), strings.Join(criteria, "\n"), nil
}

// findMarker returns the block element that introduces the acceptance criteria.
func findMarker(body *goquery.Selection) *goquery.Selection {
	var marker *goquery.Selection

	body.Find(markerSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(sel.Text()), criteriaMarker) {
			return true
		}
		if sel.Is("strong, b") {
			if parent := sel.Closest("p, " + headingSelector); parent.Length() > 0 {
				sel = parent
			}
		}
		marker = sel
		return false
	})

	return marker
}

// inlineCriteria returns the text that follows the marker phrase within the same block.
func inlineCriteria(text string) string {
	text = normalize(text)
	idx := strings.Index(strings.ToLower(text), criteriaMarker)
	if idx < 0 {
		return ""
	}

	rest := strings.TrimSpace(text[idx+len(criteriaMarker):])
	return strings.TrimSpace(strings.TrimLeft(rest, ":-"))
}

func blockLines(sel *goquery.Selection) []string {
	if sel.Is("ul, ol") {
		var lines []string
		sel.Find("li").Each(func(_ int, item *goquery.Selection) {
			if text := normalize(item.Text()); text != "" {
				lines = append(lines, text)
			}
		})
		return lines
	}

	if text := normalize(sel.Text()); text != "" {
		return []string{text}
	}

	return nil
}

func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
