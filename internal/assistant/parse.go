package assistant

import (
	"html"
	"regexp"
	"strings"
)

var listItemPattern = regexp.MustCompile(`^(?:\d+[.)]|[-*•])\s+(.+)$`)

// ParseList extracts the items of a numbered or bulleted list. When the text
// has no list markers every non-empty line is an item.
func ParseList(text string) []string {
	var marked, plain []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := listItemPattern.FindStringSubmatch(line); m != nil {
			if item := unbold(m[1]); item != "" {
				marked = append(marked, item)
			}
			continue
		}
		plain = append(plain, unbold(line))
	}
	if len(marked) > 0 {
		return marked
	}
	return plain
}

// Idea is a suggested article.
type Idea struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ParseIdeas reads list items of the form "Title: description" or
// "Title - description".
func ParseIdeas(text string) []Idea {
	items := ParseList(text)
	ideas := make([]Idea, 0, len(items))
	for _, item := range items {
		title, description := splitIdea(item)
		if title == "" {
			continue
		}
		ideas = append(ideas, Idea{Title: title, Description: description})
	}
	return ideas
}

func splitIdea(item string) (string, string) {
	for _, sep := range []string{": ", " - ", " – "} {
		if title, description, ok := strings.Cut(item, sep); ok {
			return unbold(title), strings.TrimSpace(description)
		}
	}
	return unbold(item), ""
}

func unbold(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "*_")
	return strings.TrimSpace(s)
}

// Text is free-form generated text with an HTML-safe rendition that keeps
// line breaks.
type Text struct {
	Raw  string `json:"raw"`
	HTML string `json:"html"`
}

func newText(raw string) *Text {
	raw = strings.TrimSpace(raw)
	escaped := html.EscapeString(raw)
	return &Text{
		Raw:  raw,
		HTML: strings.ReplaceAll(escaped, "\n", "<br />\n"),
	}
}
