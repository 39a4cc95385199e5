package wiki

import (
	"fmt"
	"net/url"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"
	"github.com/google/uuid"
)

// LinkBuilder produces the targets of rendered wiki anchors.
type LinkBuilder interface {
	// ArticleURL points at the view route of an existing article.
	ArticleURL(worldID uuid.UUID, slug string) (string, error)
	// CreateURL points at the article form pre-filled with title.
	CreateURL(worldID uuid.UUID, title string) (string, error)
}

// URLKitLinksOptions configures URLKitLinks.
type URLKitLinksOptions struct {
	Manager     *urlkit.RouteManager
	Group       string
	ViewRoute   string
	CreateRoute string
	WorldParam  string
	SlugParam   string
	TitleQuery  string
}

// URLKitLinks builds anchor targets from go-urlkit routes.
type URLKitLinks struct {
	opts  URLKitLinksOptions
	group *urlkit.Group
	err   error
}

// NewURLKitLinks resolves the configured route group once. A missing group
// is reported by every subsequent build.
func NewURLKitLinks(opts URLKitLinksOptions) *URLKitLinks {
	if opts.WorldParam == "" {
		opts.WorldParam = "world_id"
	}
	if opts.SlugParam == "" {
		opts.SlugParam = "slug"
	}
	if opts.TitleQuery == "" {
		opts.TitleQuery = "title"
	}
	links := &URLKitLinks{opts: opts}
	links.group, links.err = lookupGroupPath(opts.Manager, opts.Group)
	return links
}

func (l *URLKitLinks) ArticleURL(worldID uuid.UUID, slug string) (string, error) {
	builder, err := l.builder(l.opts.ViewRoute)
	if err != nil {
		return "", err
	}
	builder.WithParam(l.opts.WorldParam, worldID.String())
	builder.WithParam(l.opts.SlugParam, slug)
	return builder.Build()
}

func (l *URLKitLinks) CreateURL(worldID uuid.UUID, title string) (string, error) {
	builder, err := l.builder(l.opts.CreateRoute)
	if err != nil {
		return "", err
	}
	builder.WithParam(l.opts.WorldParam, worldID.String())
	builder.WithQuery(l.opts.TitleQuery, title)
	return builder.Build()
}

func (l *URLKitLinks) builder(route string) (b *urlkit.Builder, err error) {
	if l.err != nil {
		return nil, l.err
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("wiki: urlkit route %q: %v", route, rec)
		}
	}()
	return l.group.Builder(route), nil
}

// go-urlkit panics on unknown groups.
func lookupGroupPath(manager *urlkit.RouteManager, path string) (group *urlkit.Group, err error) {
	if manager == nil {
		return nil, fmt.Errorf("wiki: route manager not configured")
	}
	parts := strings.Split(strings.TrimSpace(path), ".")
	if len(parts) == 0 || parts[0] == "" {
		return nil, fmt.Errorf("wiki: invalid route group %q", path)
	}
	defer func() {
		if rec := recover(); rec != nil {
			group, err = nil, fmt.Errorf("wiki: route group %q not found", path)
		}
	}()
	group = manager.Group(parts[0])
	for _, part := range parts[1:] {
		group = group.Group(part)
	}
	if group == nil {
		return nil, fmt.Errorf("wiki: route group %q not found", path)
	}
	return group, nil
}

// PathLinks builds root-relative targets without a route manager:
// /worlds/{world}/articles/{slug} and /worlds/{world}/articles/new?title=.
type PathLinks struct {
	Prefix string
}

func (p PathLinks) ArticleURL(worldID uuid.UUID, slug string) (string, error) {
	return p.Prefix + "/worlds/" + worldID.String() + "/articles/" + url.PathEscape(slug), nil
}

func (p PathLinks) CreateURL(worldID uuid.UUID, title string) (string, error) {
	q := url.Values{"title": {title}}
	return p.Prefix + "/worlds/" + worldID.String() + "/articles/new?" + q.Encode(), nil
}
