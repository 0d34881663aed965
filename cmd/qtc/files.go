package main

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"github.com/svanichkin/qtc"
	"github.com/svanichkin/qtc/internal/container"
	"github.com/svanichkin/qtc/internal/pgm"
)

func encodeFile(in, out string, o *options) (summary, error) {
	img, err := loadImage(in, o.fit)
	if err != nil {
		return summary{}, err
	}

	tree, enc, err := qtc.Compress(img, o.alpha)
	if err != nil {
		return summary{}, err
	}

	f, err := os.Create(out)
	if err != nil {
		return summary{}, err
	}
	defer f.Close()

	hdr := container.Header{Compressed: o.zstd, Created: o.now(), Ratio: enc.Ratio()}
	if err := container.Write(f, hdr, enc.Data); err != nil {
		return summary{}, err
	}
	if err := f.Close(); err != nil {
		return summary{}, err
	}

	s := summary{in: in, out: out, width: img.Width, bytes: len(enc.Data), ratio: enc.Ratio()}
	if o.grid {
		s.grid = gridPath(out)
		if err := writePGM(s.grid, tree.SegmentationGrid()); err != nil {
			return summary{}, err
		}
	}
	return s, nil
}

func decodeFile(in, out string, o *options) (summary, error) {
	f, err := os.Open(in)
	if err != nil {
		return summary{}, err
	}
	defer f.Close()

	cf, err := container.Read(f)
	if err != nil {
		return summary{}, err
	}
	tree, img, err := qtc.Decompress(cf.Payload)
	if err != nil {
		return summary{}, err
	}

	if strings.EqualFold(filepath.Ext(out), ".png") {
		err = writePNG(out, img)
	} else {
		comments := append(cf.Comments, "Decompression date : "+o.now().Format(time.ANSIC))
		err = writePGM(out, img, comments...)
	}
	if err != nil {
		return summary{}, err
	}

	s := summary{in: in, out: out, width: img.Width, bytes: len(cf.Payload), ratio: cf.Ratio}
	if o.grid {
		s.grid = gridPath(out)
		if err := writePGM(s.grid, tree.SegmentationGrid()); err != nil {
			return summary{}, err
		}
	}
	return s, nil
}

// loadImage reads a PGM directly; any other format registered with the
// image package is converted to gray, and resampled to a power-of-two
// square when fit is set.
func loadImage(path string, fit bool) (*qtc.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".pgm") {
		return pgm.Decode(f)
	}

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	gray := toGray(src)
	if fit {
		gray = fitSquare(gray)
	}
	img, err := qtc.FromGray(gray)
	if err != nil {
		return nil, err
	}
	if !qtc.IsPowerOfTwo(img.Width) {
		return nil, fmt.Errorf("%w: width %d is not a power of two (try --fit)", qtc.ErrInvalidDimension, img.Width)
	}
	return img, nil
}

// toGray copies any image.Image into an *image.Gray with bounds starting at (0,0).
func toGray(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	return dst
}

// fitSquare resamples src to the smallest power-of-two square covering its
// larger side, capped at the widest image a tree can hold.
func fitSquare(src *image.Gray) *image.Gray {
	b := src.Bounds()
	side := nextPowerOfTwo(max(b.Dx(), b.Dy()))
	side = min(side, 1<<qtc.MaxLevels)
	if side == b.Dx() && side == b.Dy() {
		return src
	}
	dst := image.NewGray(image.Rect(0, 0, side, side))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func writePGM(path string, img *qtc.Image, comments ...string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pgm.Encode(f, img, comments...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writePNG(path string, img *qtc.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img.Gray()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
