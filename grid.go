package qtc

const (
	gridBackground = 255
	gridLine       = 190
)

// SegmentationGrid renders the block boundaries of t: a white canvas where
// every uniform block gets its top and left edges drawn in gray. Blocks
// touching the image border draw nothing on that side.
func (t *QuadTree) SegmentationGrid() *Image {
	img := NewImage(t.Width(), 255)
	for i := range img.Pix {
		img.Pix[i] = gridBackground
	}
	t.grid(img, 0, 0, 0, img.Width)
	return img
}

func (t *QuadTree) grid(img *Image, index, x, y, size int) {
	if t.Nodes[index].Uniform || t.IsLeaf(index) {
		drawBlockEdges(img, x, y, size)
		return
	}
	half := size / 2
	t.grid(img, ChildOf(index, 0), x, y, half)
	t.grid(img, ChildOf(index, 1), x+half, y, half)
	t.grid(img, ChildOf(index, 2), x+half, y+half, half)
	t.grid(img, ChildOf(index, 3), x, y+half, half)
}

func drawBlockEdges(img *Image, x, y, size int) {
	if y > 0 {
		for i := x; i < min(x+size, img.Width); i++ {
			img.Set(i, y-1, gridLine)
		}
	}
	if x > 0 {
		for j := y; j < min(y+size, img.Width); j++ {
			img.Set(x-1, j, gridLine)
		}
	}
}
