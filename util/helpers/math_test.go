package helpers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMin(t *testing.T) {
	require.Equal(t, 1, Min(3, 1, 2))
	require.Equal(t, -5, Min(-5))
	require.Equal(t, uint32(8), Min[uint32](8, 8))
}

func TestIsPowerOf2(t *testing.T) {
	require.True(t, IsPowerOf2(uint32(1)))
	require.True(t, IsPowerOf2(uint32(2)))
	require.True(t, IsPowerOf2(uint32(64)))
	require.True(t, IsPowerOf2(uint32(0b10000000)))

	require.False(t, IsPowerOf2(uint32(3)))
	require.False(t, IsPowerOf2(uint32(0b1010)))
	require.False(t, IsPowerOf2(uint32(100)))
}

func TestNextPowerOf2(t *testing.T) {
	require.Equal(t, uint32(1), NextPowerOf2(1))
	require.Equal(t, uint32(2), NextPowerOf2(2))
	require.Equal(t, uint32(4), NextPowerOf2(3))
	require.Equal(t, uint32(64), NextPowerOf2(40))
	require.Equal(t, uint32(64), NextPowerOf2(64))
	require.Equal(t, uint32(128), NextPowerOf2(65))
	require.Equal(t, uint32(0b100000000), NextPowerOf2(0b11111111))
}
