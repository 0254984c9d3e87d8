package identifier

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	accountNumberPattern = regexp.MustCompile(`^[1-9][0-9]{11}$`)
	routingCodePattern   = regexp.MustCompile(`^SBIN[0-9]{7}$`)
)

func TestAccountNumberFormat(t *testing.T) {
	g := NewGenerator()
	for i := 0; i < 200; i++ {
		n, err := g.AccountNumber()
		require.NoError(t, err)
		assert.Regexp(t, accountNumberPattern, n)
	}
}

func TestRoutingCodeFormat(t *testing.T) {
	g := NewGenerator()
	for i := 0; i < 200; i++ {
		c, err := g.RoutingCode()
		require.NoError(t, err)
		assert.Regexp(t, routingCodePattern, c)
	}
}

func TestAccountNumbersRarelyCollide(t *testing.T) {
	g := NewGenerator()
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		n, err := g.AccountNumber()
		require.NoError(t, err)
		seen[n] = struct{}{}
	}
	assert.Len(t, seen, 1000)
}

func TestExhaustedSourceFails(t *testing.T) {
	g := NewGeneratorFromReader(bytes.NewReader(nil))

	_, err := g.AccountNumber()
	assert.Error(t, err)

	_, err = g.RoutingCode()
	assert.Error(t, err)
}
