package lexer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// UnknownTokenError is returned when a line contains a token that does not
// belong to any token class.
type UnknownTokenError struct {
	Token Token
}

func (e *UnknownTokenError) Error() string {
	return fmt.Sprintf("Unknown command: unrecognized token %q", e.Token.Text)
}

var tokenRe = buildTokenPattern()

// buildTokenPattern compiles the line scanner. Phrases come first, longest
// first, so "greater or equal to" is never split into shorter matches.
// Go's regexp picks the first alternative that matches at a position.
func buildTokenPattern() *regexp.Regexp {
	var phrases []string
	for word := range keywords {
		if strings.Contains(word, " ") {
			phrases = append(phrases, word)
		}
	}
	for phrase := range Comparisons {
		phrases = append(phrases, phrase)
	}
	sort.Slice(phrases, func(i, j int) bool {
		if len(phrases[i]) != len(phrases[j]) {
			return len(phrases[i]) > len(phrases[j])
		}
		return phrases[i] < phrases[j]
	})

	alts := make([]string, 0, len(phrases)+8)
	for _, phrase := range phrases {
		words := strings.Fields(phrase)
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		alts = append(alts, strings.Join(words, `\s+`)+`\b`)
	}
	alts = append(alts,
		`"[^"]*"`,
		`-?\d+(?:\.\d+)?\b`,
		`[A-Za-z_]\w*`,
		`[{}(),]`,
		`"[^"]*$`,
		`\d\w*`,
		`[^\s{}(),"A-Za-z0-9_]+`,
		`\S`,
	)
	return regexp.MustCompile(`^(?:` + strings.Join(alts, "|") + `)`)
}

// Tokenize splits one source line into raw token strings. Multi-word phrases
// are returned as single tokens with their inner whitespace normalised.
func Tokenize(line string) []string {
	var out []string
	for _, tok := range scan(line) {
		out = append(out, tok.Text)
	}
	return out
}

func scan(line string) []Token {
	var tokens []Token
	pos := 0
	for pos < len(line) {
		if isSpace(line[pos]) {
			pos++
			continue
		}
		loc := tokenRe.FindStringIndex(line[pos:])
		if loc == nil {
			// \S always matches a non-space byte, so this is unreachable.
			break
		}
		text := line[pos : pos+loc[1]]
		if strings.ContainsAny(text, " \t") && !strings.HasPrefix(text, `"`) {
			text = strings.Join(strings.Fields(text), " ")
		}
		tokens = append(tokens, Token{Text: text, Column: pos + 1})
		pos += loc[1]
	}
	return tokens
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == '\v' || b == '\f'
}

// Line tokenizes and classifies a trimmed source line. A blank line yields no
// tokens. If any token is invalid the whole line is rejected.
func Line(line string) ([]Token, error) {
	tokens := scan(strings.TrimSpace(line))
	for i := range tokens {
		tokens[i].Kind = Classify(tokens[i].Text)
		if tokens[i].Kind == Invalid {
			return nil, &UnknownTokenError{Token: tokens[i]}
		}
	}
	return tokens, nil
}

// Texts returns the raw text of each token.
func Texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

// Join rejoins token texts with single spaces.
func Join(tokens []Token) string {
	return strings.Join(Texts(tokens), " ")
}

// Index returns the position of the first token of the given kind, or -1.
func Index(tokens []Token, kind Kind) int {
	for i, t := range tokens {
		if t.Kind == kind {
			return i
		}
	}
	return -1
}
