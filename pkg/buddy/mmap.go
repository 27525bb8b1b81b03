package buddy

import (
	mmap "github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// NewMmap backs the pool with an anonymous memory mapping instead of a
// GC-managed slice, keeping the pool off the Go heap. Close unmaps it.
func NewMmap(level, minLevel uint) (*Allocator, error) {
	m, err := mmap.MapRegion(nil, 1<<level, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return nil, errors.Wrap(err, "failed to map anonymous region")
	}

	a, err := FromBuffer(level, minLevel, m, func([]byte) error {
		return errors.Wrap(m.Unmap(), "failed to unmap pool")
	})
	if err != nil {
		m.Unmap()
		return nil, err
	}
	return a, nil
}
