// Package container reads and writes .qtc files: a short text header
// followed by the raw quadtree bitstream.
//
//	Q1
//	# Compression date : Mon Jan  2 15:04:05 2006
//	# Compression rate 12.34%
//	<bitstream>
//
// Q2 files have the same header and a zstd-compressed bitstream.
package container

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

const (
	magicRaw  = "Q1"
	magicZstd = "Q2"

	datePrefix  = "Compression date : "
	ratePrefix  = "Compression rate "
	maxLineSize = 4096
)

var ErrInvalidMagic = errors.New("container: invalid magic")

// Header is the metadata written in front of the bitstream.
type Header struct {
	Compressed bool      // zstd payload (Q2)
	Created    time.Time // zero: no date line
	Ratio      float64   // percent of the raw image size
}

// File is a parsed container.
type File struct {
	Header
	Comments []string // header comment lines without the leading "# "
	Payload  []byte   // decoded bitstream
}

// Write writes the header and payload to w.
func Write(w io.Writer, h Header, payload []byte) error {
	bw := bufio.NewWriter(w)

	magic := magicRaw
	if h.Compressed {
		magic = magicZstd
	}
	if _, err := bw.WriteString(magic + "\n"); err != nil {
		return err
	}
	for _, c := range h.Lines() {
		if _, err := fmt.Fprintf(bw, "# %s\n", c); err != nil {
			return err
		}
	}

	if h.Compressed {
		if err := encodeZstd(bw, payload); err != nil {
			return fmt.Errorf("zstd encode: %w", err)
		}
	} else if _, err := bw.Write(payload); err != nil {
		return err
	}
	return bw.Flush()
}

// Lines returns the header lines describing h, without the "# " prefix.
func (h Header) Lines() []string {
	var out []string
	if !h.Created.IsZero() {
		out = append(out, datePrefix+h.Created.Format(time.ANSIC))
	}
	out = append(out, fmt.Sprintf("%s%.2f%%", ratePrefix, h.Ratio))
	return out
}

// Read parses a container and returns its bitstream.
func Read(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)

	line, err := readLine(br)
	if err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	f := &File{}
	switch line {
	case magicRaw:
	case magicZstd:
		f.Compressed = true
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMagic, line)
	}

	for {
		// The bitstream starts with the level byte, which is never '#'.
		c, err := br.Peek(1)
		if err != nil || c[0] != '#' {
			break
		}
		line, err := readLine(br)
		if err != nil {
			return nil, fmt.Errorf("read comment: %w", err)
		}
		f.addComment(strings.TrimSpace(strings.TrimPrefix(line, "#")))
	}

	rest, err := io.ReadAll(br)
	if err != nil {
		return nil, err
	}
	if f.Compressed {
		if rest, err = decodeZstd(bytes.NewReader(rest)); err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
	}
	f.Payload = rest
	return f, nil
}

func (f *File) addComment(c string) {
	f.Comments = append(f.Comments, c)
	switch {
	case strings.HasPrefix(c, datePrefix):
		if t, err := time.Parse(time.ANSIC, strings.TrimPrefix(c, datePrefix)); err == nil {
			f.Created = t
		}
	case strings.HasPrefix(c, ratePrefix):
		v := strings.TrimSuffix(strings.TrimPrefix(c, ratePrefix), "%")
		if ratio, err := strconv.ParseFloat(v, 64); err == nil {
			f.Ratio = ratio
		}
	}
}

func readLine(br *bufio.Reader) (string, error) {
	var sb strings.Builder
	for {
		c, err := br.ReadByte()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return "", err
		}
		if c == '\n' {
			return strings.TrimSuffix(sb.String(), "\r"), nil
		}
		if sb.Len() >= maxLineSize {
			return "", fmt.Errorf("header line longer than %d bytes", maxLineSize)
		}
		sb.WriteByte(c)
	}
}

func encodeZstd(w io.Writer, raw []byte) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return err
	}
	if _, err := enc.Write(raw); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

func decodeZstd(r io.Reader) ([]byte, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return io.ReadAll(dec)
}
