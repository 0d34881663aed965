package qtc

import (
	"fmt"
	"image"
	"math/bits"
)

// Image is a square 8-bit grayscale grid in row-major order.
type Image struct {
	Width    int
	MaxValue int
	Pix      []uint8
}

// NewImage returns a zeroed width x width image.
func NewImage(width, maxValue int) *Image {
	return &Image{
		Width:    width,
		MaxValue: maxValue,
		Pix:      make([]uint8, width*width),
	}
}

// Len returns the pixel count.
func (m *Image) Len() int { return len(m.Pix) }

func (m *Image) At(x, y int) uint8 { return m.Pix[y*m.Width+x] }

func (m *Image) Set(x, y int, v uint8) { m.Pix[y*m.Width+x] = v }

// Levels returns log2(Width). The width must be a power of two.
func (m *Image) Levels() int {
	return bits.TrailingZeros(uint(m.Width))
}

// Validate checks that the image is a power-of-two square with every
// sample within [0, MaxValue].
func (m *Image) Validate() error {
	if !IsPowerOfTwo(m.Width) {
		return fmt.Errorf("%w: width %d is not a power of two", ErrInvalidDimension, m.Width)
	}
	if m.Levels() > MaxLevels {
		return fmt.Errorf("%w: width %d exceeds %d", ErrInvalidDimension, m.Width, 1<<MaxLevels)
	}
	if len(m.Pix) != m.Width*m.Width {
		return fmt.Errorf("%w: %d pixels for a %dx%d image", ErrInvalidDimension, len(m.Pix), m.Width, m.Width)
	}
	if m.MaxValue < 1 || m.MaxValue > 255 {
		return fmt.Errorf("%w: max value %d", ErrPixelRange, m.MaxValue)
	}
	for i, p := range m.Pix {
		if int(p) > m.MaxValue {
			return fmt.Errorf("%w: pixel %d is %d, max %d", ErrPixelRange, i, p, m.MaxValue)
		}
	}
	return nil
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// FromGray copies a square *image.Gray into an Image with max value 255.
func FromGray(src *image.Gray) (*Image, error) {
	b := src.Bounds()
	if b.Dx() != b.Dy() {
		return nil, fmt.Errorf("%w: %dx%d is not square", ErrInvalidDimension, b.Dx(), b.Dy())
	}
	m := NewImage(b.Dx(), 255)
	for y := 0; y < m.Width; y++ {
		off := src.PixOffset(b.Min.X, b.Min.Y+y)
		copy(m.Pix[y*m.Width:(y+1)*m.Width], src.Pix[off:off+m.Width])
	}
	return m, nil
}

// Gray returns the image as an *image.Gray sharing no memory with m.
func (m *Image) Gray() *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, m.Width, m.Width))
	copy(dst.Pix, m.Pix)
	return dst
}
