package wiki

import (
	"iter"
	"regexp"
	"strings"
)

// tokenPattern matches "@[" + title + "]". A title is any run of characters
// other than "[", "]", CR and LF. Excluding CR and LF is narrower than a plain
// non-bracket grammar: "@[Al\ndric]" is not a reference, so a token never spans
// lines and the renderer's line-based inline parsing sees the same tokens.
var (
	tokenPattern         = regexp.MustCompile(`@\[([^\[\]\r\n]+)\]`)
	anchoredTokenPattern = regexp.MustCompile(`^@\[([^\[\]\r\n]+)\]`)
)

// Token is one wiki reference occurrence in a body.
type Token struct {
	// Raw is the full matched text, e.g. "@[Aldric]".
	Raw string
	// Title is the exact text between the brackets.
	Title string
	// Offset is the byte offset of Raw within the body.
	Offset int
}

// Scan yields every token of body in order of appearance. The sequence is
// lazy and can be ranged over any number of times with identical results.
func Scan(body string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		rest, base := body, 0
		for {
			loc := tokenPattern.FindStringSubmatchIndex(rest)
			if loc == nil {
				return
			}
			tok := Token{
				Raw:    rest[loc[0]:loc[1]],
				Title:  rest[loc[2]:loc[3]],
				Offset: base + loc[0],
			}
			if !yield(tok) {
				return
			}
			rest, base = rest[loc[1]:], base+loc[1]
		}
	}
}

// Tokens collects Scan(body) into a slice.
func Tokens(body string) []Token {
	var out []Token
	for tok := range Scan(body) {
		out = append(out, tok)
	}
	return out
}

// Titles returns the distinct referenced titles of body in first-seen order.
func Titles(body string) []string {
	seen := map[string]struct{}{}
	var out []string
	for tok := range Scan(body) {
		if _, ok := seen[tok.Title]; ok {
			continue
		}
		seen[tok.Title] = struct{}{}
		out = append(out, tok.Title)
	}
	return out
}

// ContainsToken reports whether body references title exactly. A body
// mentioning "@[Villager]" does not reference "Villa".
func ContainsToken(body, title string) bool {
	if title == "" || !strings.Contains(body, TokenFor(title)) {
		return false
	}
	for tok := range Scan(body) {
		if tok.Title == title {
			return true
		}
	}
	return false
}

// TokenFor returns the reference token for title.
func TokenFor(title string) string {
	return "@[" + title + "]"
}

// ValidTitle reports whether title can be expressed as a token.
func ValidTitle(title string) bool {
	return title != "" && !strings.ContainsAny(title, "[]\r\n")
}

// matchToken matches a token at the start of src and returns its title and
// byte width.
func matchToken(src []byte) (string, int, bool) {
	if len(src) < 3 || src[0] != '@' || src[1] != '[' {
		return "", 0, false
	}
	loc := anchoredTokenPattern.FindSubmatchIndex(src)
	if loc == nil {
		return "", 0, false
	}
	return string(src[loc[2]:loc[3]]), loc[1], true
}
