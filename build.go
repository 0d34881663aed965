package qtc

import "math"

// Build partitions img into a quadtree. Every internal node keeps the floor of
// its children's mean plus the remainder of that division, which is what lets
// the decoder recover an omitted child exactly.
func Build(img *Image) (*QuadTree, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	t, err := NewQuadTree(img.Levels())
	if err != nil {
		return nil, err
	}

	t.build(img, img.Width, 0, 0, 0)
	if n := t.internalCount(); n > 0 {
		t.MeanVariance /= float64(n)
	}
	return t, nil
}

func (t *QuadTree) build(img *Image, size, index, x, y int) {
	node := &t.Nodes[index]
	if size == 1 {
		*node = Node{Average: img.At(x, y), Uniform: true}
		return
	}

	half := size / 2
	t.build(img, half, ChildOf(index, 0), x, y)           // top left
	t.build(img, half, ChildOf(index, 1), x+half, y)      // top right
	t.build(img, half, ChildOf(index, 2), x+half, y+half) // bottom right
	t.build(img, half, ChildOf(index, 3), x, y+half)      // bottom left

	children := t.Nodes[ChildOf(index, 0) : ChildOf(index, 3)+1]
	sum := 0
	uniform := true
	for _, c := range children {
		sum += int(c.Average)
		uniform = uniform && c.Uniform && c.Average == children[0].Average
	}
	node.Average = uint8(sum / 4)
	node.Remainder = uint8(sum % 4)
	node.Uniform = uniform

	var sv float64
	for _, c := range children {
		d := float64(node.Average) - float64(c.Average)
		sv += c.Variance*c.Variance + d*d
	}
	node.Variance = math.Sqrt(sv) / 4

	t.MeanVariance += node.Variance
	t.MaxVariance = max(t.MaxVariance, node.Variance)
}
