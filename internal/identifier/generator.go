// Package identifier produces the account number and routing code assigned to
// an account at registration.
package identifier

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

const (
	AccountNumberLength = 12
	RoutingCodePrefix   = "SBIN"
	routingDigits       = 7
)

// Generator draws identifiers from a random source. Each call is independent.
type Generator struct {
	rand io.Reader
}

func NewGenerator() *Generator {
	return &Generator{rand: rand.Reader}
}

// NewGeneratorFromReader is used by tests that need a deterministic source.
func NewGeneratorFromReader(r io.Reader) *Generator {
	return &Generator{rand: r}
}

// AccountNumber returns a 12 digit number that never starts with 0.
func (g *Generator) AccountNumber() (string, error) {
	buf := make([]byte, AccountNumberLength)
	for i := range buf {
		base, offset := int64(10), int64(0)
		if i == 0 {
			base, offset = 9, 1
		}
		v, err := g.digit(base)
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + v + offset)
	}
	return string(buf), nil
}

// RoutingCode returns the bank prefix followed by 7 digits.
func (g *Generator) RoutingCode() (string, error) {
	buf := make([]byte, routingDigits)
	for i := range buf {
		v, err := g.digit(10)
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + v)
	}
	return RoutingCodePrefix + string(buf), nil
}

func (g *Generator) digit(base int64) (int64, error) {
	v, err := rand.Int(g.rand, big.NewInt(base))
	if err != nil {
		return 0, fmt.Errorf("failed to read random digit: %w", err)
	}
	return v.Int64(), nil
}
