package buddy

// status is the 4-state occupancy of a tree node, packed 2 bits per node.
type status uint8

const (
	// statusUnused marks a subtree that is entirely free.
	statusUnused status = iota

	// statusUsed marks an allocated leaf of exactly this node's size.
	statusUsed

	// statusSplit marks a node divided into two children, at least one
	// of which still has free capacity.
	statusSplit

	// statusFull marks a divided node with no free capacity anywhere
	// beneath it.
	statusFull
)

// tree is the per-node status table, 4 nodes per byte. It aliases the
// leading bytes of the managed pool, so the allocator's bookkeeping costs
// no memory outside the pool itself.
//
// Callers are responsible for index validity, there is no bounds checking
// beyond what the slice itself enforces.
type tree []byte

func (t tree) get(index int) status {
	return status((t[index>>2] >> (uint(index&3) * 2)) & 3)
}

func (t tree) set(index int, s status) {
	shift := uint(index&3) * 2
	t[index>>2] = t[index>>2]&^(3<<shift) | byte(s)<<shift
}
