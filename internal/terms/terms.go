// package terms normalizes the free-text requirement and avoidance fields
// carried by rules and draws. Operators paste these lists with whatever
// delimiters their source documents use, so the parser accepts half-width
// and full-width commas and semicolons, the enumeration comma, pipes and
// newlines, and classifies every token into a tagged form.
package terms

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/expertpanel/draw-service/internal/apperrors"
)

// TokenKind discriminates the parsed forms of a term token.
type TokenKind string

const (
	// KindNumericID is a pure-numeric token referencing an id.
	KindNumericID TokenKind = "numeric_id"
	// KindMasked is a partially masked identifier: leading digits, a run of
	// asterisks, trailing digits, at least 8 characters in total.
	KindMasked TokenKind = "masked"
	// KindFreeText is a name or code token.
	KindFreeText TokenKind = "free_text"
)

// Token is one classified term.
type Token struct {
	Raw  string
	Kind TokenKind

	// ID is set for KindNumericID.
	ID int64
	// Prefix and Suffix are the digit runs around the mask for KindMasked.
	Prefix string
	Suffix string
}

var (
	numericPattern = regexp.MustCompile(`^[0-9]+$`)
	maskedPattern  = regexp.MustCompile(`^([0-9]+)(\*+)([0-9]+)$`)
)

const maskedMinLen = 8

var splitter = regexp.MustCompile(`[,，;；、|\r\n]+`)

// Split normalizes a term list into an ordered, de-duplicated list of
// trimmed, non-empty tokens. Splitting is idempotent: Split(strings.Join(
// Split(s), ",")) returns the same list.
func Split(raw string) []string {
	parts := splitter.Split(raw, -1)

	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(part)
		if token == "" {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}

	return out
}

// Parse splits a term list and classifies every token. A token containing
// asterisks that does not form a valid masked identifier, or a token with no
// letter or digit at all, is rejected with an InvalidTokenError naming it.
func Parse(raw string) ([]Token, error) {
	parts := Split(raw)

	tokens := make([]Token, 0, len(parts))
	for _, part := range parts {
		token, err := Classify(part)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}

	return tokens, nil
}

// Classify determines the form of a single trimmed token.
func Classify(raw string) (Token, error) {
	if numericPattern.MatchString(raw) {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Token{}, &apperrors.InvalidTokenError{Token: raw}
		}
		return Token{Raw: raw, Kind: KindNumericID, ID: id}, nil
	}

	if strings.Contains(raw, "*") {
		m := maskedPattern.FindStringSubmatch(raw)
		if m == nil || len(raw) < maskedMinLen {
			return Token{}, &apperrors.InvalidTokenError{Token: raw}
		}
		return Token{Raw: raw, Kind: KindMasked, Prefix: m[1], Suffix: m[3]}, nil
	}

	if !hasTextContent(raw) {
		return Token{}, &apperrors.InvalidTokenError{Token: raw}
	}

	return Token{Raw: raw, Kind: KindFreeText}, nil
}

// SplitIDsAndNames parses a term list and partitions it into numeric ids and
// free-text names. Masked tokens are not meaningful for requirement fields
// and are rejected.
func SplitIDsAndNames(raw string) ([]int64, []string, error) {
	tokens, err := Parse(raw)
	if err != nil {
		return nil, nil, err
	}

	var ids []int64
	var names []string
	for _, token := range tokens {
		switch token.Kind {
		case KindNumericID:
			ids = append(ids, token.ID)
		case KindFreeText:
			names = append(names, token.Raw)
		default:
			return nil, nil, &apperrors.InvalidTokenError{Token: token.Raw}
		}
	}

	return ids, names, nil
}

func hasTextContent(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
