package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"supplier", "buyer", "logistics", "admin"} {
		r, err := ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, Role(s), r)
	}

	_, err := ParseRole("customer")
	require.ErrorIs(t, err, ErrValidation)
}

func TestParseAshType(t *testing.T) {
	a, err := ParseAshType("fly_ash")
	require.NoError(t, err)
	assert.Equal(t, FlyAsh, a)

	_, err = ParseAshType("slag")
	require.ErrorIs(t, err, ErrValidation)
}
