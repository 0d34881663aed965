package qtc

// Compress builds the tree of img, filters it with alpha (see Filter; 0 keeps
// it lossless) and encodes it. The tree is returned alongside the stream for
// callers that render a segmentation grid.
func Compress(img *Image, alpha float64) (*QuadTree, *Encoded, error) {
	t, err := Build(img)
	if err != nil {
		return nil, nil, err
	}
	promoted := t.Filter(alpha)

	enc, err := Encode(t)
	if err != nil {
		return nil, nil, err
	}
	Logger().Debug("qtc: compressed",
		"width", img.Width,
		"levels", t.Levels,
		"promoted", promoted,
		"bits", enc.Bits,
		"bytes", len(enc.Data),
		"ratio", enc.Ratio())
	return t, enc, nil
}

// Decompress decodes a bitstream and draws the resulting image.
func Decompress(data []byte) (*QuadTree, *Image, error) {
	t, err := Decode(data)
	if err != nil {
		return nil, nil, err
	}
	img := Reconstruct(t)
	Logger().Debug("qtc: decompressed",
		"levels", t.Levels,
		"bytes", len(data),
		"uniform", t.UniformCount())
	return t, img, nil
}
