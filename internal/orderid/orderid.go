// Package orderid generates the human-readable order identifiers shown to
// shoppers, e.g. RYL-7K2Q9ZPA.
package orderid

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// Prefix starts every order id.
	Prefix = "RYL-"
	// Length is the number of random characters after Prefix.
	Length   = 8
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Generator produces order identifiers.
type Generator interface {
	Generate() (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func() (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate() (string, error) { return f() }

type randomGenerator struct{}

// New returns a generator backed by crypto/rand.
func New() Generator {
	return randomGenerator{}
}

func (randomGenerator) Generate() (string, error) {
	buf := make([]byte, Length)
	size := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("failed to generate order id: %w", err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return Prefix + string(buf), nil
}

// Valid reports whether id has the RYL-XXXXXXXX shape.
func Valid(id string) bool {
	if len(id) != len(Prefix)+Length || id[:len(Prefix)] != Prefix {
		return false
	}
	for _, r := range id[len(Prefix):] {
		if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
