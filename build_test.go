package qtc

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

// -----------------------------
// Test images
// -----------------------------

func imageOf(width int, pix ...uint8) *Image {
	return &Image{Width: width, MaxValue: 255, Pix: pix}
}

func makeNoise(width int, seed uint64) *Image {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	img := NewImage(width, 255)
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.IntN(256))
	}
	return img
}

// makeBlocky fills block x block squares with one random value each, so the
// tree has uniform subtrees above the leaves.
func makeBlocky(width, block int, seed uint64) *Image {
	rng := rand.New(rand.NewPCG(seed, 7))
	img := NewImage(width, 255)
	for by := 0; by < width; by += block {
		for bx := 0; bx < width; bx += block {
			v := uint8(rng.IntN(256))
			for y := by; y < by+block; y++ {
				for x := bx; x < bx+block; x++ {
					img.Set(x, y, v)
				}
			}
		}
	}
	return img
}

// makeSmooth is a diagonal gradient with light noise.
func makeSmooth(width int, seed uint64) *Image {
	rng := rand.New(rand.NewPCG(seed, 3))
	img := NewImage(width, 255)
	for y := 0; y < width; y++ {
		for x := 0; x < width; x++ {
			v := (x+y)*255/(2*width) + rng.IntN(3)
			img.Set(x, y, uint8(min(v, 255)))
		}
	}
	return img
}

// -----------------------------
// Build
// -----------------------------

func TestBuild_TwoByTwo(t *testing.T) {
	// Row-major 10,20 / 44,30: clockwise order gives 10, 20, 30, 44.
	tree, err := Build(imageOf(2, 10, 20, 44, 30))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tree.Levels != 1 || tree.Len() != 5 {
		t.Fatalf("levels=%d nodes=%d, want 1 and 5", tree.Levels, tree.Len())
	}

	root := tree.Nodes[0]
	if root.Average != 26 || root.Remainder != 0 || root.Uniform {
		t.Fatalf("root = %+v, want average 26, remainder 0, not uniform", root)
	}
	wantVar := math.Sqrt(16*16+6*6+4*4+18*18) / 4
	if math.Abs(root.Variance-wantVar) > 1e-12 {
		t.Fatalf("root variance = %v, want %v", root.Variance, wantVar)
	}
	if tree.MeanVariance != root.Variance || tree.MaxVariance != root.Variance {
		t.Fatalf("mean=%v max=%v, want both %v", tree.MeanVariance, tree.MaxVariance, root.Variance)
	}

	for i, want := range []uint8{10, 20, 30, 44} {
		leaf := tree.Nodes[i+1]
		if leaf.Average != want || !leaf.Uniform || leaf.Remainder != 0 || leaf.Variance != 0 {
			t.Fatalf("leaf %d = %+v, want average %d", i+1, leaf, want)
		}
	}
}

func TestBuild_Remainder(t *testing.T) {
	tree, err := Build(imageOf(2, 1, 2, 0, 2))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := tree.Nodes[0]; got.Average != 1 || got.Remainder != 1 {
		t.Fatalf("root = %+v, want average 1 remainder 1", got)
	}
}

func TestBuild_Constant(t *testing.T) {
	img := NewImage(16, 255)
	for i := range img.Pix {
		img.Pix[i] = 77
	}
	tree, err := Build(img)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tree.UniformCount() != tree.Len() {
		t.Fatalf("%d of %d nodes uniform", tree.UniformCount(), tree.Len())
	}
	if tree.MeanVariance != 0 || tree.MaxVariance != 0 {
		t.Fatalf("mean=%v max=%v, want 0", tree.MeanVariance, tree.MaxVariance)
	}
}

func TestBuild_UniformNeedsEqualChildren(t *testing.T) {
	// Four uniform 2x2 quadrants with different values.
	tree, err := Build(makeBlocky(4, 2, 11))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for k := range 4 {
		if !tree.Nodes[ChildOf(0, k)].Uniform {
			t.Fatalf("quadrant %d not uniform", k)
		}
	}
	if tree.Nodes[0].Uniform {
		t.Fatalf("root uniform over distinct quadrants %v", tree.Nodes[1:5])
	}
}

func TestBuild_Stats(t *testing.T) {
	tree, err := Build(makeNoise(32, 5))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	sum, maxv := 0.0, 0.0
	for i, n := range tree.Nodes {
		if tree.IsLeaf(i) {
			continue
		}
		sum += n.Variance
		maxv = max(maxv, n.Variance)
	}
	mean := sum / float64(tree.Len()-LeafCount(tree.Levels))
	if math.Abs(tree.MeanVariance-mean) > 1e-9 || tree.MaxVariance != maxv {
		t.Fatalf("mean=%v max=%v, want %v and %v", tree.MeanVariance, tree.MaxVariance, mean, maxv)
	}
}

func TestBuild_Invalid(t *testing.T) {
	for _, tc := range []struct {
		name string
		img  *Image
		want error
	}{
		{name: "width_3", img: NewImage(3, 255), want: ErrInvalidDimension},
		{name: "width_0", img: NewImage(0, 255), want: ErrInvalidDimension},
		{name: "short_pixels", img: imageOf(2, 1, 2, 3), want: ErrInvalidDimension},
		{name: "too_wide", img: &Image{Width: 1 << (MaxLevels + 1), MaxValue: 255}, want: ErrInvalidDimension},
		{name: "above_max", img: &Image{Width: 2, MaxValue: 15, Pix: []uint8{1, 2, 16, 3}}, want: ErrPixelRange},
		{name: "max_zero", img: &Image{Width: 1, MaxValue: 0, Pix: []uint8{0}}, want: ErrPixelRange},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Build(tc.img); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}
