package pool

import (
	"testing"

	"buddy-alloc/pkg/buddy"

	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, blockSize int) (*buddy.Allocator, *Pool) {
	a, err := buddy.New(10, 5)
	require.NoError(t, err)

	p, err := New(a, blockSize)
	require.NoError(t, err)
	return a, p
}

func TestNewValidation(t *testing.T) {
	a, err := buddy.New(10, 5)
	require.NoError(t, err)

	_, err = New(a, 0)
	require.ErrorIs(t, err, ErrBlockSize)

	_, err = New(a, -1)
	require.ErrorIs(t, err, ErrBlockSize)

	_, err = New(a, 2048)
	require.ErrorIs(t, err, ErrBlockSize)
}

func TestBlockSizeRounding(t *testing.T) {
	_, p := newTestPool(t, 200)
	require.Equal(t, 256, p.BlockSize())

	block, err := p.Get()
	require.NoError(t, err)
	require.Equal(t, 256, len(block))
}

func TestGetPutRecycles(t *testing.T) {
	a, p := newTestPool(t, 64)
	free := a.Available()

	first, err := p.Get()
	require.NoError(t, err)
	require.Equal(t, 1, p.Live())
	require.Equal(t, free-64, a.Available())

	p.Put(first)
	require.Equal(t, 0, p.Live())

	// recycled, not released: same backing block, no new carve
	second, err := p.Get()
	require.NoError(t, err)
	require.Equal(t, &first[0], &second[0])
	require.Equal(t, free-64, a.Available())
}

func TestRelease(t *testing.T) {
	a, p := newTestPool(t, 64)
	free := a.Available()

	blocks := make([][]byte, 0, 8)
	for i := 0; i < cap(blocks); i++ {
		block, err := p.Get()
		require.NoError(t, err)
		blocks = append(blocks, block)
	}
	require.Equal(t, free-8*64, a.Available())

	for _, block := range blocks {
		p.Put(block)
	}
	p.Release()
	require.Equal(t, free, a.Available())
	require.Equal(t, 0, p.Live())
}

func TestGetExhaustion(t *testing.T) {
	_, p := newTestPool(t, 256)

	// 992 free bytes fit three 256 byte blocks
	for i := 0; i < 3; i++ {
		_, err := p.Get()
		require.NoError(t, err)
	}

	_, err := p.Get()
	require.ErrorIs(t, err, buddy.ErrOutOfMemory)
}
