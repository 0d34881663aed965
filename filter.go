package qtc

// Filter merges near-uniform subtrees so they encode as a single value.
//
// The acceptance threshold starts at MeanVariance/MaxVariance on the root and
// is multiplied by alpha at every level down. A node is promoted when all four
// children are (or became) uniform and its own variance is within the
// threshold. alpha <= 1 keeps the image practically intact, around 1.5 gives
// a reasonable gain, 2 and above visibly degrades it. A non-positive alpha
// disables the pass.
//
// Filter returns the number of promoted nodes. It must run before Encode.
func (t *QuadTree) Filter(alpha float64) int {
	if !(alpha > 0) || t.MaxVariance == 0 {
		return 0
	}
	promoted := 0
	t.filter(0, t.MeanVariance/t.MaxVariance, alpha, &promoted)
	Logger().Debug("qtc: filter", "alpha", alpha, "promoted", promoted)
	return promoted
}

func (t *QuadTree) filter(index int, sigma, alpha float64, promoted *int) bool {
	node := &t.Nodes[index]
	// Leaves are always uniform, so recursion stops before the last level.
	if node.Uniform {
		return true
	}

	ok := 0
	for k := range 4 {
		if t.filter(ChildOf(index, k), sigma*alpha, alpha, promoted) {
			ok++
		}
	}
	if ok < 4 || node.Variance > sigma {
		return false
	}

	node.Remainder = 0
	node.Uniform = true
	*promoted++
	return true
}
