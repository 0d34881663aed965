package qtc

// Reconstruct draws t back into a pixel grid. It visits quadrants in the
// same clockwise order as Build, so each leaf lands on the pixel it was
// built from.
func Reconstruct(t *QuadTree) *Image {
	img := NewImage(t.Width(), 255)
	t.project(img, 0, 0, 0, img.Width)
	return img
}

func (t *QuadTree) project(img *Image, index, x, y, size int) {
	if t.IsLeaf(index) {
		img.Set(x, y, t.Nodes[index].Average)
		return
	}
	half := size / 2
	t.project(img, ChildOf(index, 0), x, y, half)
	t.project(img, ChildOf(index, 1), x+half, y, half)
	t.project(img, ChildOf(index, 2), x+half, y+half, half)
	t.project(img, ChildOf(index, 3), x, y+half, half)
}
