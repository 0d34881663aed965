package qtc

import "fmt"

// Encoded is the outcome of Encode.
type Encoded struct {
	Data   []byte // bitstream, zero padded to a whole byte
	Bits   int    // bit length before padding
	Levels int
}

// Ratio returns the compressed size as a percentage of the raw 8-bit image,
// not counting the level byte.
func (e *Encoded) Ratio() float64 {
	raw := float64(LeafCount(e.Levels) * 8)
	return 100 * float64(len(e.Data)*8-8) / raw
}

// Encode serializes t. The layout is the 8-bit level count followed by one
// record per node in index order:
//   - nothing when the parent is uniform;
//   - leaves: the average, except for a 4th child;
//   - internal nodes: the average (omitted for a 4th child), the 2-bit
//     remainder and, only when the remainder is 0, the uniform bit.
//
// A 4th child's average is never stored: the decoder recomputes it from the
// parent and the three siblings.
func Encode(t *QuadTree) (*Encoded, error) {
	// 11 bits per node at most, plus the level byte.
	p, err := NewBitPacker(2*t.Len() + 1)
	if err != nil {
		return nil, err
	}
	if err := p.Append(uint8(t.Levels), 8); err != nil {
		return nil, err
	}

	for i := range t.Nodes {
		if i > 0 && t.Nodes[ParentOf(i)].Uniform {
			continue
		}
		if err := encodeNode(p, t, i); err != nil {
			return nil, fmt.Errorf("encode node %d: %w", i, err)
		}
	}

	bitLen := p.BitLen()
	if err := p.PadToByte(); err != nil {
		return nil, err
	}
	return &Encoded{Data: p.Bytes(), Bits: bitLen, Levels: t.Levels}, nil
}

func encodeNode(p *BitPacker, t *QuadTree, i int) error {
	node := t.Nodes[i]
	fourth := i > 0 && i%4 == 0

	// The root always carries a full record, even in a 1x1 image.
	if i > 0 && t.IsLeaf(i) {
		if fourth {
			return nil
		}
		return p.Append(node.Average, 8)
	}

	if !fourth {
		if err := p.Append(node.Average, 8); err != nil {
			return err
		}
	}
	if err := p.Append(node.Remainder, 2); err != nil {
		return err
	}
	if node.Remainder == 0 {
		return p.Append(boolBit(node.Uniform), 1)
	}
	return nil
}

func boolBit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
