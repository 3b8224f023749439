// Package roomcode generates the short uppercased codes that identify
// live rooms.
package roomcode

import (
	"crypto/rand"
	"fmt"
)

// Length of a room code.
const Length = 4

// Alphabet deliberately omits the ambiguous 0/O and 1/I pairs.
const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RandSource is the randomness a Generator draws from. Injected so
// tests get stable codes.
type RandSource interface {
	IntN(n int) int
}

// Generator produces room codes from a configurable randomness source.
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a generator. A nil randSource uses crypto/rand.
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// Generate returns one code. Uniqueness against live rooms is the
// caller's job; codes collide freely across time.
func (g *Generator) Generate() string {
	code := make([]byte, Length)
	if g.randSource != nil {
		for i := range code {
			code[i] = alphabet[g.randSource.IntN(len(alphabet))]
		}
		return string(code)
	}

	raw := make([]byte, Length)
	if _, err := rand.Read(raw); err != nil {
		panic("roomcode: " + err.Error())
	}
	for i := range code {
		code[i] = alphabet[int(raw[i])%len(alphabet)]
	}
	return string(code)
}

// Generate returns one code from the default crypto/rand generator.
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Validate checks shape only: length and alphabet membership.
func Validate(code string) error {
	if len(code) != Length {
		return fmt.Errorf("room code must be exactly %d characters, got %d", Length, len(code))
	}
	for i, c := range code {
		valid := false
		for _, a := range alphabet {
			if c == a {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid character %c at position %d", c, i)
		}
	}
	return nil
}
