// Package markdown imports a directory of Markdown files into a world.
// Each file carries optional YAML frontmatter naming the article title,
// category, publication flag and private notes; the body becomes the public
// text of the article.
package markdown
