package qtc

import "errors"

var (
	// ErrAllocation reports a buffer or tree that cannot be sized for the request.
	ErrAllocation = errors.New("qtc: allocation failure")
	// ErrStreamUnderrun reports a read past the end of the bitstream.
	ErrStreamUnderrun = errors.New("qtc: stream underrun")
	// ErrInvalidDimension reports an image that is not a square power of two.
	ErrInvalidDimension = errors.New("qtc: invalid dimension")
	// ErrPixelRange reports a sample outside [0, max value].
	ErrPixelRange = errors.New("qtc: pixel value out of range")
	// ErrCorruptStream reports a bitstream whose content cannot come from the encoder.
	ErrCorruptStream = errors.New("qtc: corrupt stream")

	ErrBitCount = errors.New("qtc: bit count must be in 1..8")
	ErrMode     = errors.New("qtc: wrong bit packer mode")
)
