package wiki

import (
	"bytes"
	"html"
	"strings"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const (
	classExists  = "wiki-link wiki-link-exists"
	classMissing = "wiki-link wiki-link-missing"

	defaultCreateLabel = "Criar artigo: "
)

// KindWikiLink is the AST kind of a wiki reference.
var KindWikiLink = ast.NewNodeKind("WikiLink")

// WikiLinkNode is an inline wiki reference. Its title is kept verbatim and
// never parsed as markup.
type WikiLinkNode struct {
	ast.BaseInline
	Title string
}

func (n *WikiLinkNode) Kind() ast.NodeKind { return KindWikiLink }

func (n *WikiLinkNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Title": n.Title}, nil)
}

// KindWikiCode is the AST kind of an inline code span. It replaces goldmark's
// code span so references inside code still become anchors.
var KindWikiCode = ast.NewNodeKind("WikiCode")

// WikiCodeNode is an inline code span whose content is kept literal apart
// from wiki references.
type WikiCodeNode struct {
	ast.BaseInline
	Content string
}

func (n *WikiCodeNode) Kind() ast.NodeKind { return KindWikiCode }

func (n *WikiCodeNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Content": n.Content}, nil)
}

// Bodies are escaped with literalEscaper before parsing so entities and
// backslashes reach the reader unchanged; literalUnescaper restores text
// that bypasses goldmark's own unescaping.
var (
	literalEscaper   = strings.NewReplacer(`\`, `\\`, `&`, `&amp;`)
	literalUnescaper = strings.NewReplacer(`\\`, `\`, `&amp;`, `&`)
)

const maxHeadingLevel = 3

type wikiLinkParser struct{}

func (wikiLinkParser) Trigger() []byte { return []byte{'@'} }

func (wikiLinkParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, _ := block.PeekLine()
	title, width, ok := matchToken(line)
	if !ok {
		return nil
	}
	block.Advance(width)
	return &WikiLinkNode{Title: literalUnescaper.Replace(title)}
}

// starDelimiter limits emphasis to '*'; underscores stay literal.
type starDelimiter struct{}

func (starDelimiter) IsDelimiter(b byte) bool { return b == '*' }

func (starDelimiter) CanOpenCloser(opener, closer *parser.Delimiter) bool {
	return opener.Char == closer.Char
}

func (starDelimiter) OnMatch(consumes int) ast.Node { return ast.NewEmphasis(consumes) }

type starEmphasisParser struct{}

func (starEmphasisParser) Trigger() []byte { return []byte{'*'} }

func (starEmphasisParser) Parse(_ ast.Node, block text.Reader, pc parser.Context) ast.Node {
	before := block.PrecendingCharacter()
	line, segment := block.PeekLine()
	node := parser.ScanDelimiter(line, before, 1, starDelimiter{})
	if node == nil {
		return nil
	}
	node.Segment = segment.WithStop(segment.Start + node.OriginalLength)
	block.Advance(node.OriginalLength)
	pc.PushDelimiter(node)
	return node
}

// literalTransformer swaps code spans for WikiCodeNode and turns headings
// deeper than maxHeadingLevel back into paragraphs that keep their markers.
type literalTransformer struct{}

func (literalTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()
	var spans []*ast.CodeSpan
	var headings []*ast.Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.CodeSpan:
			spans = append(spans, node)
			return ast.WalkSkipChildren, nil
		case *ast.Heading:
			if node.Level > maxHeadingLevel {
				headings = append(headings, node)
			}
		}
		return ast.WalkContinue, nil
	})

	for _, span := range spans {
		var content bytes.Buffer
		for c := span.FirstChild(); c != nil; c = c.NextSibling() {
			var value []byte
			switch child := c.(type) {
			case *ast.Text:
				value = child.Segment.Value(source)
			case *ast.String:
				value = child.Value
			}
			if bytes.HasSuffix(value, []byte("\n")) {
				value = append(value[:len(value)-1:len(value)-1], ' ')
			}
			content.Write(value)
		}
		parent := span.Parent()
		parent.ReplaceChild(parent, span, &WikiCodeNode{Content: literalUnescaper.Replace(content.String())})
	}

	for _, heading := range headings {
		para := ast.NewParagraph()
		para.AppendChild(para, ast.NewString([]byte(strings.Repeat("#", heading.Level)+" ")))
		for c := heading.FirstChild(); c != nil; {
			next := c.NextSibling()
			para.AppendChild(para, c)
			c = next
		}
		parent := heading.Parent()
		parent.ReplaceChild(parent, heading, para)
	}
}

// AnchorFunc returns the href, class and title attribute for a reference.
type AnchorFunc func(title string) (href, class, tooltip string)

type wikiLinkRenderer struct {
	anchor AnchorFunc
}

func (r *wikiLinkRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindWikiLink, r.renderLink)
	reg.Register(KindWikiCode, r.renderCode)
}

func (r *wikiLinkRenderer) renderLink(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		r.writeAnchor(w, n.(*WikiLinkNode).Title)
	}
	return ast.WalkSkipChildren, nil
}

func (r *wikiLinkRenderer) renderCode(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	content := n.(*WikiCodeNode).Content
	_, _ = w.WriteString("<code>")
	last := 0
	for _, loc := range tokenPattern.FindAllStringSubmatchIndex(content, -1) {
		_, _ = w.Write(util.EscapeHTML([]byte(content[last:loc[0]])))
		r.writeAnchor(w, content[loc[2]:loc[3]])
		last = loc[1]
	}
	_, _ = w.Write(util.EscapeHTML([]byte(content[last:])))
	_, _ = w.WriteString("</code>")
	return ast.WalkSkipChildren, nil
}

func (r *wikiLinkRenderer) writeAnchor(w util.BufWriter, title string) {
	href, class, tooltip := r.anchor(title)
	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(util.EscapeHTML([]byte(href)))
	_, _ = w.WriteString(`" class="`)
	_, _ = w.WriteString(class)
	_, _ = w.WriteString(`" title="`)
	_, _ = w.Write(util.EscapeHTML([]byte(tooltip)))
	_, _ = w.WriteString(`">`)
	_, _ = w.Write(util.EscapeHTML([]byte(title)))
	_, _ = w.WriteString(`</a>`)
}

// WikiLinks is a goldmark extension that parses "@[Title]" references and
// renders them through Anchor, including inside code spans.
type WikiLinks struct {
	Anchor AnchorFunc
}

func (e WikiLinks) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithInlineParsers(util.Prioritized(wikiLinkParser{}, 150)),
		parser.WithASTTransformers(util.Prioritized(literalTransformer{}, 100)),
	)
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&wikiLinkRenderer{anchor: e.Anchor}, 500),
	))
}

// Renderer converts article bodies into an HTML fragment. It supports "#"
// to "###" headings, "*" and "**" emphasis, code spans, paragraphs and hard
// line breaks. Anything else, raw HTML included, is emitted as escaped text.
type Renderer struct {
	links       LinkBuilder
	createLabel string
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithLinkBuilder sets the anchor target builder.
func WithLinkBuilder(links LinkBuilder) RendererOption {
	return func(r *Renderer) {
		if links != nil {
			r.links = links
		}
	}
}

// WithCreateLabel sets the tooltip prefix of unresolved anchors.
func WithCreateLabel(label string) RendererOption {
	return func(r *Renderer) {
		r.createLabel = label
	}
}

// NewRenderer builds a renderer. Links default to PathLinks.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{links: PathLinks{}, createLabel: defaultCreateLabel}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render converts body for worldID, linking each reference according to
// resolutions. It never fails: if conversion errors the body is returned as
// an escaped paragraph.
func (r *Renderer) Render(body string, worldID uuid.UUID, resolutions Resolutions) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	engine := r.engine(worldID, resolutions)

	var buf bytes.Buffer
	if err := engine.Convert([]byte(literalEscaper.Replace(body)), &buf); err != nil {
		return "<p>" + strings.ReplaceAll(html.EscapeString(body), "\n", "<br>\n") + "</p>\n"
	}
	return buf.String()
}

func (r *Renderer) engine(worldID uuid.UUID, resolutions Resolutions) goldmark.Markdown {
	anchor := func(title string) (string, string, string) {
		res := resolutions.Lookup(title)
		if res.Exists {
			href, err := r.links.ArticleURL(worldID, res.Slug)
			if err != nil {
				href = "#"
			}
			return href, classExists, title
		}
		href, err := r.links.CreateURL(worldID, title)
		if err != nil {
			href = "#"
		}
		return href, classMissing, r.createLabel + title
	}

	return goldmark.New(
		goldmark.WithParser(safeParser()),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		goldmark.WithExtensions(WikiLinks{Anchor: anchor}),
	)
}

// safeParser only knows the supported markup. Setext headings, thematic
// breaks, indented or fenced code, lists, quotes, links and raw HTML are not
// parsed and stay plain text.
func safeParser() parser.Parser {
	return parser.NewParser(
		parser.WithBlockParsers(
			util.Prioritized(parser.NewATXHeadingParser(), 600),
			util.Prioritized(parser.NewParagraphParser(), 1000),
		),
		parser.WithInlineParsers(
			util.Prioritized(parser.NewCodeSpanParser(), 100),
			util.Prioritized(starEmphasisParser{}, 500),
		),
	)
}
