package pool

import (
	"buddy-alloc/pkg/buddy"
	"buddy-alloc/util/helpers"

	"github.com/pkg/errors"
)

var ErrBlockSize = errors.New("invalid pool block size")

// Pool hands out fixed-size blocks carved from a buddy allocator. Returned
// blocks are recycled on a free list rather than released immediately, so
// a Get after a Put costs no tree walk.
//
// Like the allocator beneath it, a Pool is not safe for concurrent use.
type Pool struct {
	allocator *buddy.Allocator
	blockSize int
	free      [][]byte
	live      int
}

// New builds a pool of blockSize-byte blocks, rounded up to a power of two.
func New(allocator *buddy.Allocator, blockSize int) (*Pool, error) {
	if blockSize <= 0 {
		return nil, errors.Wrapf(ErrBlockSize, "size %d", blockSize)
	}

	size := int(helpers.NextPowerOf2(uint32(blockSize)))
	if size > allocator.Len() {
		return nil, errors.Wrapf(ErrBlockSize, "size %d exceeds pool of %d bytes", blockSize, allocator.Len())
	}

	return &Pool{allocator: allocator, blockSize: size}, nil
}

// Get returns a recycled block if one is cached, otherwise carves a fresh
// one from the allocator.
func (p *Pool) Get() ([]byte, error) {
	if n := len(p.free); n > 0 {
		block := p.free[n-1]
		p.free = p.free[:n-1]
		p.live++
		return block, nil
	}

	block, err := p.allocator.Alloc(p.blockSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to carve block from allocator")
	}

	p.live++
	return block, nil
}

// Put recycles a block obtained from Get. The block stays reserved in the
// allocator until Release.
func (p *Pool) Put(block []byte) {
	p.free = append(p.free, block)
	p.live--
}

// Release frees every recycled block back to the allocator. Blocks still
// held by callers remain live.
func (p *Pool) Release() {
	for _, block := range p.free {
		p.allocator.Free(block)
	}
	p.free = p.free[:0]
}

// BlockSize reports the rounded block size handed out by Get.
func (p *Pool) BlockSize() int {
	return p.blockSize
}

// Live reports how many blocks are currently held by callers.
func (p *Pool) Live() int {
	return p.live
}
