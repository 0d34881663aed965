// Package pgm reads and writes Netpbm grayscale images (P2 and P5).
package pgm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/svanichkin/qtc"
)

var ErrInvalidMagic = errors.New("pgm: invalid magic")

// RangeError reports a sample (or max value) outside the allowed range.
type RangeError struct {
	Index int // pixel index, -1 for the max value itself
	Value int
	Max   int
}

func (e *RangeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("pgm: max value %d not in 1..%d", e.Value, e.Max)
	}
	return fmt.Sprintf("pgm: pixel %d is %d, max %d", e.Index, e.Value, e.Max)
}

func (e *RangeError) Unwrap() error { return qtc.ErrPixelRange }

// Decode reads a P2 or P5 image. Only square images are accepted.
func Decode(r io.Reader) (*qtc.Image, error) {
	br := bufio.NewReader(r)

	magic := make([]byte, 2)
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, fmt.Errorf("pgm: read magic: %w", err)
	}
	binary := false
	switch string(magic) {
	case "P2":
	case "P5":
		binary = true
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMagic, magic)
	}

	var hdr [3]int
	for i, label := range []string{"width", "height", "max value"} {
		v, err := readInt(br)
		if err != nil {
			return nil, fmt.Errorf("pgm: read %s: %w", label, err)
		}
		hdr[i] = v
	}
	width, height, maxVal := hdr[0], hdr[1], hdr[2]

	if width != height {
		return nil, fmt.Errorf("%w: %dx%d is not square", qtc.ErrInvalidDimension, width, height)
	}
	if width <= 0 || width > 1<<qtc.MaxLevels {
		return nil, fmt.Errorf("%w: width %d", qtc.ErrInvalidDimension, width)
	}
	if maxVal < 1 || maxVal > 255 {
		return nil, &RangeError{Index: -1, Value: maxVal, Max: 255}
	}

	img := qtc.NewImage(width, maxVal)
	if binary {
		if _, err := io.ReadFull(br, img.Pix); err != nil {
			return nil, fmt.Errorf("pgm: read samples: %w", unexpected(err))
		}
		for i, p := range img.Pix {
			if int(p) > maxVal {
				return nil, &RangeError{Index: i, Value: int(p), Max: maxVal}
			}
		}
		return img, nil
	}

	for i := range img.Pix {
		v, err := readInt(br)
		if err != nil {
			return nil, fmt.Errorf("pgm: read sample %d: %w", i, err)
		}
		if v < 0 || v > maxVal {
			return nil, &RangeError{Index: i, Value: v, Max: maxVal}
		}
		img.Pix[i] = uint8(v)
	}
	return img, nil
}

// Encode writes img as a binary P5 image. Each comment becomes a "# " line
// of the header.
func Encode(w io.Writer, img *qtc.Image, comments ...string) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("P5\n"); err != nil {
		return err
	}
	for _, c := range comments {
		if _, err := fmt.Fprintf(bw, "# %s\n", c); err != nil {
			return err
		}
	}
	maxVal := img.MaxValue
	if maxVal == 0 {
		maxVal = 255
	}
	if _, err := fmt.Fprintf(bw, "%d %d\n%d\n", img.Width, img.Width, maxVal); err != nil {
		return err
	}
	if _, err := bw.Write(img.Pix); err != nil {
		return err
	}
	return bw.Flush()
}

// readInt skips whitespace and '#' comments, then parses a decimal integer.
func readInt(br *bufio.Reader) (int, error) {
	var digits []byte
	for {
		c, err := br.ReadByte()
		if err != nil {
			if err == io.EOF && len(digits) > 0 {
				break
			}
			return 0, unexpected(err)
		}
		switch {
		case c == '#' && len(digits) == 0:
			if _, err := br.ReadString('\n'); err != nil {
				return 0, unexpected(err)
			}
			continue
		case isSpace(c):
			if len(digits) == 0 {
				continue
			}
		case (c >= '0' && c <= '9') || (c == '-' && len(digits) == 0):
			digits = append(digits, c)
			continue
		default:
			return 0, fmt.Errorf("unexpected byte %q", c)
		}
		// The separator is consumed, so binary samples start right after
		// the max value.
		break
	}
	return strconv.Atoi(string(digits))
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
