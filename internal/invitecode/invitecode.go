// Package invitecode generates and checks human-enterable invite codes of the
// form PREFIX-XXXXXX.
package invitecode

import (
	"crypto/rand"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Alphabet drops 0/O and 1/I so codes survive being read aloud or retyped.
// It has exactly 32 symbols, which keeps 5-bit sampling unbiased.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Length is the number of random symbols after the prefix.
const Length = 6

var ErrInvalidPrefix = errors.New("invite code prefix must be 1-8 uppercase letters or digits")

var (
	prefixPattern  = regexp.MustCompile(`^[A-Z0-9]{1,8}$`)
	anyCodePattern = regexp.MustCompile(`^[A-Z0-9]{1,8}-[` + Alphabet + `]{6}$`)
)

type Generator struct {
	prefix  string
	pattern *regexp.Regexp
}

func NewGenerator(prefix string) (*Generator, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if !prefixPattern.MatchString(prefix) {
		return nil, ErrInvalidPrefix
	}
	return &Generator{
		prefix:  prefix,
		pattern: regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `-[` + Alphabet + `]{` + fmt.Sprint(Length) + `}$`),
	}, nil
}

// MustGenerator is NewGenerator for static prefixes.
func MustGenerator(prefix string) *Generator {
	g, err := NewGenerator(prefix)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Generator) Prefix() string { return g.prefix }

// Generate draws Length symbols uniformly from Alphabet. Uniqueness is not
// checked here; the store's code index rejects collisions.
func (g *Generator) Generate() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	var sb strings.Builder
	sb.Grow(len(g.prefix) + 1 + Length)
	sb.WriteString(g.prefix)
	sb.WriteByte('-')
	for _, b := range buf {
		sb.WriteByte(Alphabet[b&0x1f])
	}
	return sb.String(), nil
}

// Batch returns n freshly generated codes.
func (g *Generator) Batch(n int) ([]string, error) {
	codes := make([]string, 0, n)
	for range n {
		code, err := g.Generate()
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// Normalize trims whitespace and uppercases a user-entered code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Valid reports whether code, after normalization, has the expected shape.
func (g *Generator) Valid(code string) bool {
	return g.pattern.MatchString(Normalize(code))
}

// WellFormed checks the shape of a stored code without knowing its prefix.
func WellFormed(code string) bool {
	return anyCodePattern.MatchString(code)
}
