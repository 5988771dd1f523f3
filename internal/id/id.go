// Package id generates the opaque, prefixed identifiers used for every entity.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefix marks the entity kind an identifier belongs to.
type Prefix string

// Entity prefixes.
const (
	User       Prefix = "usr"
	Book       Prefix = "book"
	Review     Prefix = "rev"
	Genre      Prefix = "gen"
	Community  Prefix = "com"
	Membership Prefix = "mem"
	Post       Prefix = "post"
	Comment    Prefix = "cmt"
	Token      Prefix = "tok"
)

// alphabet omits '-' and '_' so the separator stays unambiguous.
const (
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	length   = 18
)

// Generate creates an identifier of the form "<prefix>-<nanoid>",
// e.g. "com-4fT0bq9ZkLmXw2sPaR".
//
// Returns an error if the system has insufficient entropy.
func Generate(prefix Prefix) (string, error) {
	n, err := gonanoid.Generate(alphabet, length)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return string(prefix) + "-" + n, nil
}

// MustGenerate is like Generate but panics if generation fails.
// Only for seeding and tests.
func MustGenerate(prefix Prefix) string {
	v, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return v
}

// HasPrefix reports whether v was generated for the given entity kind.
func HasPrefix(v string, prefix Prefix) bool {
	rest, ok := strings.CutPrefix(v, string(prefix)+"-")
	return ok && len(rest) == length
}
