package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
)

// FrontMatter holds the metadata recognised by the importer. Keys that are
// not known are kept in Custom.
type FrontMatter struct {
	Title     string
	Category  string
	Published *bool
	Private   string
	Custom    map[string]any
}

// ParseFrontMatter extracts metadata and the Markdown body from source.
// Documents without a frontmatter block return an empty FrontMatter and the
// whole source as body.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	return FrontMatter{
		Title:     strings.TrimSpace(meta.Title),
		Category:  strings.TrimSpace(meta.Category),
		Published: meta.Published,
		Private:   strings.TrimSpace(meta.Private),
		Custom:    cloneMap(meta.Custom),
	}, body, nil
}

// BuildDocument parses source into a Document located at path.
func BuildDocument(path string, source []byte, modified time.Time) (*Document, error) {
	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Document{
		Path:         path,
		FrontMatter:  fm,
		Body:         body,
		LastModified: modified,
	}, nil
}

type frontMatterEnvelope struct {
	Title     string         `yaml:"title"`
	Category  string         `yaml:"category"`
	Published *bool          `yaml:"published"`
	Private   string         `yaml:"private"`
	Custom    map[string]any `yaml:",inline"`
}

func cloneMap(input map[string]any) map[string]any {
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
