package token

import (
	"regexp"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexToken = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestNew_Shape(t *testing.T) {
	gen := NewGenerator(clockwork.NewRealClock())

	tok, err := gen.New()
	require.NoError(t, err)
	assert.Regexp(t, hexToken, tok)
}

func TestNew_NoCollisions(t *testing.T) {
	gen := NewGenerator(clockwork.NewRealClock())

	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		tok, err := gen.New()
		require.NoError(t, err)

		_, dup := seen[tok]
		require.False(t, dup, "collision after %d tokens", i)
		seen[tok] = struct{}{}
	}
}

func TestNew_FrozenClockStillUnique(t *testing.T) {
	// Even with an identical timestamp component, the UUID keeps tokens apart.
	gen := NewGenerator(clockwork.NewFakeClock())

	t1, err := gen.New()
	require.NoError(t, err)
	t2, err := gen.New()
	require.NoError(t, err)

	assert.NotEqual(t, t1, t2)
}
