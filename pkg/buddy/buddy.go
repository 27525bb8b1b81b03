package buddy

import (
	"unsafe"

	"buddy-alloc/util/helpers"

	"github.com/pkg/errors"
)

var (
	ErrInvalidLevel = errors.New("invalid level/minLevel combination")
	ErrBufferSize   = errors.New("buffer size does not match level")
	ErrSizeTooLarge = errors.New("requested size exceeds pool capacity")
	ErrOutOfMemory  = errors.New("no free block of sufficient size")
	ErrInvalidFree  = errors.New("block does not belong to a live allocation")
)

// Destructor releases the backing buffer when the allocator is closed.
type Destructor func(buf []byte) error

// Allocator is a binary-buddy allocator over a fixed, caller-supplied pool
// of 2^level bytes. Requests are rounded up to power-of-two blocks no
// smaller than 2^minLevel bytes, found in O(log n) by walking an implicit
// binary tree whose 2-bit node statuses live at the front of the pool.
//
// The allocator is not safe for concurrent use; the caller serializes
// access.
type Allocator struct {
	level      uint // tree depth: log2(pool size) - minLevel
	minLevel   uint // log2 of the minimum block size
	buf        []byte
	tree       tree
	destructor Destructor
}

// FromBuffer binds an allocator to an externally supplied buffer of exactly
// 2^level bytes. The destructor, if non-nil, is invoked on Close with that
// buffer. Fails if level-minLevel < 2 (tree too shallow) or minLevel < 4
// (metadata must fit whole blocks).
func FromBuffer(level, minLevel uint, buf []byte, destructor Destructor) (*Allocator, error) {
	if level < minLevel || level-minLevel < 2 || minLevel < 4 {
		return nil, errors.Wrapf(ErrInvalidLevel, "level %d, minLevel %d", level, minLevel)
	}
	if len(buf) != 1<<level {
		return nil, errors.Wrapf(ErrBufferSize, "got %d bytes, want %d", len(buf), 1<<level)
	}

	a := &Allocator{
		level:      level - minLevel,
		minLevel:   minLevel,
		buf:        buf,
		tree:       tree(buf),
		destructor: destructor,
	}

	mdSize := 1 << (a.level - 1)
	for i := range buf[:mdSize] {
		buf[i] = 0
	}

	// reserve the metadata region before any external allocation can claim it
	if _, err := a.Alloc(mdSize); err != nil {
		return nil, errors.Wrap(err, "failed to reserve metadata region")
	}
	return a, nil
}

// New acquires a 2^level byte buffer and binds an allocator to it. The
// buffer is ordinary GC-managed memory, so no destructor is bound.
func New(level, minLevel uint) (*Allocator, error) {
	return FromBuffer(level, minLevel, make([]byte, 1<<level), nil)
}

// Close invokes the bound destructor, if any, releasing the backing buffer.
// The allocator must not be used afterwards.
func (a *Allocator) Close() error {
	if a.destructor == nil {
		return nil
	}
	return errors.Wrap(a.destructor(a.buf), "failed to release backing buffer")
}

// Len reports the total pool size in bytes, metadata included.
func (a *Allocator) Len() int {
	return 1 << (a.level + a.minLevel)
}

// Alloc returns a block of at least size bytes from the pool. The returned
// slice spans the whole rounded-up block and must be passed back to Free
// unsliced. On failure the tree is left untouched.
func (a *Allocator) Alloc(size int) ([]byte, error) {
	// reject in byte terms, the size classing below narrows to uint32
	if size < 0 || size > a.Len() {
		return nil, errors.Wrapf(ErrSizeTooLarge, "size %d, pool %d", size, a.Len())
	}

	units := 1
	if size > 1<<a.minLevel {
		units = int(helpers.NextPowerOf2(uint32(size))) >> a.minLevel
	}

	length := 1 << a.level

	index := 0
	depth := 0

	for index >= 0 {
		if units == length {
			if a.tree.get(index) == statusUnused {
				a.tree.set(index, statusUsed)
				a.markParent(index)
				off := a.indexOffset(index, depth)
				end := off + units<<a.minLevel
				return a.buf[off:end:end], nil
			}
		} else {
			switch a.tree.get(index) {
			case statusUsed, statusFull:
			case statusUnused:
				a.tree.set(index, statusSplit)
				a.tree.set(index*2+1, statusUnused)
				a.tree.set(index*2+2, statusUnused)
				fallthrough
			default:
				index = index*2 + 1
				length /= 2
				depth++
				continue
			}
		}

		// exhausted this node, move to the right sibling if we are a
		// left child, otherwise climb until we can
		if index&1 == 1 {
			index++
			continue
		}
		for {
			depth--
			length *= 2
			index = (index+1)/2 - 1
			if index < 0 {
				return nil, ErrOutOfMemory
			}
			if index&1 == 1 {
				index++
				break
			}
		}
	}

	return nil, ErrOutOfMemory
}

// Free releases a block previously returned by Alloc, merging it with its
// buddy recursively while the buddy is also free. Passing a slice that was
// not returned by Alloc, or freeing twice, is a caller bug and panics.
func (a *Allocator) Free(block []byte) {
	off := a.offsetOf(block) >> a.minLevel
	left := 0
	length := 1 << a.level
	index := 0

	for {
		switch a.tree.get(index) {
		case statusUsed:
			if off != left {
				panic(errors.Wrapf(ErrInvalidFree, "offset %d is inside a block starting at %d", off, left))
			}
			a.combine(index)
			return
		case statusUnused:
			panic(errors.Wrapf(ErrInvalidFree, "offset %d points into free space", off))
		default:
			length /= 2
			if off < left+length {
				index = index*2 + 1
			} else {
				left += length
				index = index*2 + 2
			}
		}
	}
}

// Available reports the number of free bytes remaining in the pool.
func (a *Allocator) Available() int {
	return a.available(0, 1<<a.level)
}

func (a *Allocator) available(index, length int) int {
	switch a.tree.get(index) {
	case statusUnused:
		return length << a.minLevel
	case statusUsed, statusFull:
		return 0
	default:
		return a.available(index*2+1, length/2) + a.available(index*2+2, length/2)
	}
}

// markParent promotes ancestors to full while the claimed node's buddy
// chain has no free capacity left.
func (a *Allocator) markParent(index int) {
	for {
		buddy := index - 1 + (index&1)*2
		if buddy <= 0 {
			return
		}
		if s := a.tree.get(buddy); s != statusUsed && s != statusFull {
			return
		}
		index = (index+1)/2 - 1
		a.tree.set(index, statusFull)
	}
}

// combine merges the freed node with its buddy as far up as both halves
// are unused, then demotes any full ancestors back to split.
func (a *Allocator) combine(index int) {
	for {
		buddy := index - 1 + (index&1)*2
		if buddy < 0 || a.tree.get(buddy) != statusUnused {
			a.tree.set(index, statusUnused)
			for {
				index = (index+1)/2 - 1
				if index < 0 || a.tree.get(index) != statusFull {
					return
				}
				a.tree.set(index, statusSplit)
			}
		}
		index = (index+1)/2 - 1
	}
}

// indexOffset maps a node to the byte offset of the region it owns: its
// rank among nodes of its depth times the region size at that depth.
func (a *Allocator) indexOffset(index, depth int) int {
	return ((index + 1) - 1<<depth) << (int(a.level) - depth) << a.minLevel
}

// offsetOf maps a block back to its byte offset within the pool, panicking
// if the slice is empty, from a different pool, or not block-aligned.
func (a *Allocator) offsetOf(block []byte) int {
	if len(block) == 0 {
		panic(errors.Wrap(ErrInvalidFree, "empty block"))
	}
	off := uintptr(unsafe.Pointer(&block[0])) - uintptr(unsafe.Pointer(&a.buf[0]))
	if off >= uintptr(len(a.buf)) {
		panic(errors.Wrap(ErrInvalidFree, "block is not from this pool"))
	}
	if off&(1<<a.minLevel-1) != 0 {
		panic(errors.Wrapf(ErrInvalidFree, "offset %d is not block aligned", off))
	}
	return int(off)
}
