package qtc

import (
	"bytes"
	"image"
	"testing"
)

func TestReconstruct(t *testing.T) {
	for _, img := range []*Image{imageOf(1, 5), makeNoise(4, 1), makeNoise(32, 2), makeBlocky(16, 2, 3)} {
		tree, err := Build(img)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		got := Reconstruct(tree)
		if got.Width != img.Width || !bytes.Equal(got.Pix, img.Pix) {
			t.Fatalf("width %d: reconstructed image differs", img.Width)
		}
	}
}

func TestSegmentationGrid(t *testing.T) {
	for _, tc := range []struct {
		name string
		img  *Image
		want []uint8
	}{
		{name: "uniform", img: imageOf(2, 9, 9, 9, 9), want: []uint8{255, 255, 255, 255}},
		// Every pixel is its own block: the top-right and bottom-left
		// blocks draw onto the top-left pixel, the bottom-right block
		// onto its top and left neighbours.
		{name: "split", img: imageOf(2, 1, 2, 3, 4), want: []uint8{190, 190, 190, 255}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tree, _ := Build(tc.img)
			got := tree.SegmentationGrid()
			if !bytes.Equal(got.Pix, tc.want) {
				t.Fatalf("grid = %v, want %v", got.Pix, tc.want)
			}
		})
	}
}

func TestSegmentationGrid_Quadrants(t *testing.T) {
	// Four uniform 4x4 quadrants: one horizontal and one vertical line.
	tree, _ := Build(makeBlocky(8, 4, 1))
	grid := tree.SegmentationGrid()
	for y := range 8 {
		for x := range 8 {
			want := uint8(255)
			if x == 3 || y == 3 {
				want = 190
			}
			if got := grid.At(x, y); got != want {
				t.Fatalf("(%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestGrayConversion(t *testing.T) {
	img := makeNoise(8, 4)
	g := img.Gray()
	back, err := FromGray(g)
	if err != nil {
		t.Fatalf("FromGray: %v", err)
	}
	if !bytes.Equal(back.Pix, img.Pix) {
		t.Fatalf("gray round trip differs")
	}

	sub := g.SubImage(image.Rect(2, 2, 6, 6)).(*image.Gray)
	part, err := FromGray(sub)
	if err != nil {
		t.Fatalf("FromGray(sub): %v", err)
	}
	if part.Width != 4 || part.At(0, 0) != img.At(2, 2) || part.At(3, 3) != img.At(5, 5) {
		t.Fatalf("sub-image copy wrong")
	}

	if _, err := FromGray(image.NewGray(image.Rect(0, 0, 4, 2))); err == nil {
		t.Fatalf("expected error for a non-square image")
	}
}
