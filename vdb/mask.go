package vdb

import "math/bits"

// bitmask is a packed bit array sized for one bit per node slot.  It
// generalizes the fixed Mask512/Mask4096/Mask32768 layouts of NanoVDB to
// the runtime-configured shapes this package supports.
type bitmask []uint64

func newBitmask(nbits int) bitmask {
	return make(bitmask, (nbits+63)>>6)
}

func (m bitmask) on(i int) {
	m[i>>6] |= 1 << (i & 63)
}

func (m bitmask) off(i int) {
	m[i>>6] &^= 1 << (i & 63)
}

func (m bitmask) isOn(i int) bool {
	return m[i>>6]&(1<<(i&63)) != 0
}

// countOn returns the number of set bits.
func (m bitmask) countOn() int {
	count := 0
	for _, w := range m {
		count += bits.OnesCount64(w)
	}
	return count
}

func (m bitmask) isEmpty() bool {
	for _, w := range m {
		if w != 0 {
			return false
		}
	}
	return true
}

// isFull reports whether all nbits bits are set.
func (m bitmask) isFull(nbits int) bool {
	full := nbits >> 6
	for i := 0; i < full; i++ {
		if m[i] != ^uint64(0) {
			return false
		}
	}
	if rem := nbits & 63; rem != 0 {
		if m[full] != 1<<rem-1 {
			return false
		}
	}
	return true
}

// firstOn returns the index of the lowest set bit, or -1 if none.
func (m bitmask) firstOn() int {
	for i, w := range m {
		if w != 0 {
			return i<<6 + bits.TrailingZeros64(w)
		}
	}
	return -1
}

// fill sets the first nbits bits.
func (m bitmask) fill(nbits int) {
	full := nbits >> 6
	for i := 0; i < full; i++ {
		m[i] = ^uint64(0)
	}
	if rem := nbits & 63; rem != 0 {
		m[full] = 1<<rem - 1
	}
}

func (m bitmask) clear() {
	for i := range m {
		m[i] = 0
	}
}

func (m bitmask) clone() bitmask {
	out := make(bitmask, len(m))
	copy(out, m)
	return out
}
