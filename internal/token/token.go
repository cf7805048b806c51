// Package token generates the opaque identifiers used as lookup keys in
// unauthenticated links, and assigns them uniquely by retrying inserts that
// collide on a unique constraint.
package token

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"embervite/internal/domain"
)

const (
	// DefaultLength is the number of hex characters in a token.
	DefaultLength = 11
	// MinLength is the shortest configurable token length.
	MinLength = 6
	// FallbackLength is used for one last attempt after MaxAttempts collisions.
	FallbackLength = 32
	// MaxAttempts bounds how many DefaultLength tokens are tried before falling back.
	MaxAttempts = 5

	minRandomBytes = 10
)

// ErrTokensExhausted is returned when every attempt, including the fallback, collided.
var ErrTokensExhausted = errors.New("token: unique token attempts exhausted")

// Generator produces hex tokens of a fixed length from a random source.
type Generator struct {
	length int
	reader io.Reader
}

// NewGenerator returns a Generator backed by crypto/rand. A length below 1 selects DefaultLength.
func NewGenerator(length int) *Generator {
	return NewGeneratorFromReader(length, rand.Reader)
}

// NewGeneratorFromReader returns a Generator that reads randomness from r.
func NewGeneratorFromReader(length int, r io.Reader) *Generator {
	if length < 1 {
		length = DefaultLength
	}
	return &Generator{length: length, reader: r}
}

// Length returns the number of characters Generate produces.
func (g *Generator) Length() int {
	return g.length
}

// Generate returns a new token of Length hex characters.
func (g *Generator) Generate() (string, error) {
	return g.generate(g.length)
}

func (g *Generator) generate(length int) (string, error) {
	n := (length + 1) / 2
	if n < minRandomBytes {
		n = minRandomBytes
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(g.reader, buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf)[:length], nil
}

// InsertFunc stores a record carrying tok. It must return an error wrapping
// domain.ErrDuplicateToken when tok is already taken.
type InsertFunc func(ctx context.Context, tok string) error

// InsertUnique calls insert with fresh tokens until one is accepted. Only
// duplicate-token errors are retried; after MaxAttempts it tries once more
// with a FallbackLength token. It returns the token that was stored.
func (g *Generator) InsertUnique(ctx context.Context, insert InsertFunc) (string, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		tok, err := g.try(ctx, g.length, insert)
		if err == nil {
			return tok, nil
		}
		if !errors.Is(err, domain.ErrDuplicateToken) {
			return "", err
		}
	}
	fallback := FallbackLength
	if g.length > fallback {
		fallback = g.length * 2
	}
	tok, err := g.try(ctx, fallback, insert)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateToken) {
			return "", ErrTokensExhausted
		}
		return "", err
	}
	return tok, nil
}

func (g *Generator) try(ctx context.Context, length int, insert InsertFunc) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tok, err := g.generate(length)
	if err != nil {
		return "", err
	}
	if err := insert(ctx, tok); err != nil {
		return "", err
	}
	return tok, nil
}
