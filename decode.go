package qtc

import "fmt"

// Decode rebuilds a tree from a bitstream produced by Encode.
func Decode(data []byte) (*QuadTree, error) {
	return DecodeFrom(NewBitReader(data))
}

// DecodeFrom reads one tree from p. The stream must end within the byte
// holding the last node record, and the padding bits must be zero.
func DecodeFrom(p *BitPacker) (*QuadTree, error) {
	levels, err := p.Consume(8)
	if err != nil {
		return nil, fmt.Errorf("decode levels: %w", err)
	}
	t, err := NewQuadTree(int(levels))
	if err != nil {
		return nil, err
	}

	for i := range t.Nodes {
		if err := decodeNode(p, t, i); err != nil {
			return nil, fmt.Errorf("decode node %d: %w", i, err)
		}
	}

	if rest := p.Remaining(); rest >= 8 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptStream, rest/8)
	} else if rest > 0 {
		pad, err := p.Consume(uint8(rest))
		if err != nil {
			return nil, err
		}
		if pad != 0 {
			return nil, fmt.Errorf("%w: non-zero padding", ErrCorruptStream)
		}
	}
	return t, nil
}

func decodeNode(p *BitPacker, t *QuadTree, i int) error {
	node := &t.Nodes[i]
	if i == 0 {
		return readRecord(p, node, true)
	}

	parent := t.Nodes[ParentOf(i)]
	if parent.Uniform {
		*node = Node{Average: parent.Average, Uniform: true}
		return nil
	}

	if i%4 == 0 {
		avg := 4*int(parent.Average) + int(parent.Remainder) -
			int(t.Nodes[i-1].Average) - int(t.Nodes[i-2].Average) - int(t.Nodes[i-3].Average)
		if avg < 0 || avg > 255 {
			return fmt.Errorf("%w: interpolated average %d", ErrCorruptStream, avg)
		}
		node.Average = uint8(avg)
		if t.IsLeaf(i) {
			node.Remainder, node.Uniform = 0, true
			return nil
		}
		return readRecord(p, node, false)
	}

	if t.IsLeaf(i) {
		avg, err := p.Consume(8)
		if err != nil {
			return err
		}
		*node = Node{Average: avg, Uniform: true}
		return nil
	}
	return readRecord(p, node, true)
}

// readRecord reads an internal node record: the average when withAverage,
// then the remainder and, when it is zero, the uniform bit.
func readRecord(p *BitPacker, node *Node, withAverage bool) error {
	if withAverage {
		avg, err := p.Consume(8)
		if err != nil {
			return err
		}
		node.Average = avg
	}
	rem, err := p.Consume(2)
	if err != nil {
		return err
	}
	node.Remainder = rem
	node.Uniform = false
	if rem == 0 {
		u, err := p.Consume(1)
		if err != nil {
			return err
		}
		node.Uniform = u == 1
	}
	return nil
}
