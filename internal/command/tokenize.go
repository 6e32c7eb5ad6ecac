package command

import (
	"errors"
	"strings"
)

// MaxTokens bounds how many tokens one input line may hold.
const MaxTokens = 100

var ErrTooManyTokens = errors.New("too many tokens in input line")

// Tokenize lower-cases line and splits it on spaces, commas and '='.
// Empty tokens are dropped.
func Tokenize(line string) ([]string, error) {
	tokens := strings.FieldsFunc(strings.ToLower(line), func(r rune) bool {
		return r == ' ' || r == ',' || r == '=' || r == '\t'
	})
	if len(tokens) >= MaxTokens {
		return nil, ErrTooManyTokens
	}
	return tokens, nil
}
