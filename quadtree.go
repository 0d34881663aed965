package qtc

import (
	"fmt"

	"github.com/samber/lo"
)

// MaxLevels bounds the depth of a tree (a 4096x4096 image). Level counts
// read from a stream are checked against it before anything is allocated.
const MaxLevels = 12

// Node is one block of the image.
type Node struct {
	Average   uint8   // block mean
	Remainder uint8   // sum of the children's averages mod 4; 0 for leaves
	Uniform   bool    // the whole block is Average
	Variance  float64 // construction and filtering only, never encoded
}

// QuadTree is a complete 4-ary tree stored in breadth order: the children of
// node i are 4i+1..4i+4 and the leaves fill the last level.
type QuadTree struct {
	Nodes  []Node
	Levels int

	// MeanVariance and MaxVariance are set by Build and drive Filter.
	MeanVariance float64
	MaxVariance  float64
}

// NodeCount returns (4^(levels+1)-1)/3, the size of a tree of the given depth.
func NodeCount(levels int) int {
	return (1<<(2*(levels+1)) - 1) / 3
}

// LeafCount returns 4^levels.
func LeafCount(levels int) int {
	return 1 << (2 * levels)
}

// ParentOf returns the parent index of node i. It panics for the root.
func ParentOf(i int) int {
	if i <= 0 {
		panic(fmt.Sprintf("qtc: node %d has no parent", i))
	}
	return (i - 1) / 4
}

// ChildOf returns the index of the k-th child (0..3, clockwise from top-left) of node i.
func ChildOf(i, k int) int {
	if i < 0 || k < 0 || k > 3 {
		panic(fmt.Sprintf("qtc: invalid child %d of node %d", k, i))
	}
	return 4*i + 1 + k
}

// NewQuadTree allocates an empty tree for a 2^levels wide image.
func NewQuadTree(levels int) (*QuadTree, error) {
	if levels < 0 || levels > MaxLevels {
		return nil, fmt.Errorf("%w: %d levels, want 0..%d", ErrInvalidDimension, levels, MaxLevels)
	}
	return &QuadTree{
		Nodes:  make([]Node, NodeCount(levels)),
		Levels: levels,
	}, nil
}

// Len returns the number of nodes.
func (t *QuadTree) Len() int { return len(t.Nodes) }

// Width returns the side of the image the tree describes.
func (t *QuadTree) Width() int { return 1 << t.Levels }

// IsLeaf reports whether node i lies on the last level.
func (t *QuadTree) IsLeaf(i int) bool {
	if i < 0 || i >= len(t.Nodes) {
		panic(fmt.Sprintf("qtc: node %d out of range [0,%d)", i, len(t.Nodes)))
	}
	return i >= len(t.Nodes)-LeafCount(t.Levels)
}

// internalCount is the number of non-leaf nodes.
func (t *QuadTree) internalCount() int {
	return len(t.Nodes) - LeafCount(t.Levels)
}

// UniformCount returns how many nodes carry the uniform flag.
func (t *QuadTree) UniformCount() int {
	return lo.CountBy(t.Nodes, func(n Node) bool { return n.Uniform })
}
