// QTC (Quadtree Compression) stores square grayscale images as a quadtree of
// block averages packed into a bitstream, with the 4th child of every node
// recovered by interpolation instead of being stored.
package qtc

import "fmt"

// BitPacker is a fixed-capacity bit buffer (msb-first in each byte).
// A packer built by NewBitPacker only appends; one built by NewBitReader
// only consumes. The backing slice is never resized.
type BitPacker struct {
	buf     []byte
	idx     int   // current byte
	free    uint8 // unused bit slots in buf[idx] (1..8)
	reading bool
}

// NewBitPacker returns a write-mode packer holding at most capacity bytes.
func NewBitPacker(capacity int) (*BitPacker, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("%w: negative packer capacity %d", ErrAllocation, capacity)
	}
	return &BitPacker{buf: make([]byte, capacity), free: 8}, nil
}

// NewBitReader returns a read-mode packer over data. The packer takes
// ownership of data; callers must not modify it while reading.
func NewBitReader(data []byte) *BitPacker {
	return &BitPacker{buf: data, free: 8, reading: true}
}

// Remaining returns the number of bits that can still be appended or consumed.
func (p *BitPacker) Remaining() int {
	return (len(p.buf)-p.idx)*8 - int(8-p.free)
}

// BitLen returns the number of bits appended (write mode) or consumed (read mode).
func (p *BitPacker) BitLen() int {
	return p.idx*8 + int(8-p.free)
}

// Bytes returns the bytes touched so far, including a partially used last byte.
func (p *BitPacker) Bytes() []byte {
	n := p.idx
	if p.free != 8 {
		n++
	}
	return p.buf[:n]
}

// Append writes the low n bits of v, most significant first.
// For example, Append(0b1011, 4) writes: 1,0,1,1.
func (p *BitPacker) Append(v uint8, n uint8) error {
	if p.reading {
		return fmt.Errorf("%w: append on a reader", ErrMode)
	}
	if n == 0 || n > 8 {
		return fmt.Errorf("%w: got %d", ErrBitCount, n)
	}
	if p.Remaining() < int(n) {
		return fmt.Errorf("%w: packer capacity of %d bytes exhausted", ErrAllocation, len(p.buf))
	}

	for n > 0 {
		k := min(p.free, n)
		shift := n - k
		chunk := (v >> shift) & byte((1<<k)-1)

		p.buf[p.idx] |= chunk << (p.free - k)
		p.free -= k
		n -= k

		if p.free == 0 {
			p.idx++
			p.free = 8
		}
	}
	return nil
}

// Consume reads n bits (1..8) and returns them in the low n bits of the
// result, msb-first within the n bits. On underrun the cursor does not move.
func (p *BitPacker) Consume(n uint8) (uint8, error) {
	if !p.reading {
		return 0, fmt.Errorf("%w: consume on a writer", ErrMode)
	}
	if n == 0 || n > 8 {
		return 0, fmt.Errorf("%w: got %d", ErrBitCount, n)
	}
	if p.Remaining() < int(n) {
		return 0, fmt.Errorf("%w: need %d bits, %d left", ErrStreamUnderrun, n, p.Remaining())
	}

	var out uint8
	for n > 0 {
		k := min(p.free, n)
		chunk := (p.buf[p.idx] >> (p.free - k)) & byte((1<<k)-1)

		out = out<<k | chunk
		p.free -= k
		n -= k

		if p.free == 0 {
			p.idx++
			p.free = 8
		}
	}
	return out, nil
}

// PadToByte fills the rest of a partially used byte with zero bits and
// advances past it. It does nothing on a byte boundary.
func (p *BitPacker) PadToByte() error {
	if p.free == 8 {
		return nil
	}
	if !p.reading {
		// Append only ever sets bits, so the unused slots are already zero.
		p.idx++
		p.free = 8
		return nil
	}
	_, err := p.Consume(p.free)
	return err
}
