package textenc

import "errors"

var (
	// ErrUnknownEncoding is returned when a charset name cannot be resolved
	// to a decoder.
	ErrUnknownEncoding = errors.New("unknown encoding")

	// ErrEncodingNotAllowed is returned when the detected charset is not in
	// the configured allow-list.
	ErrEncodingNotAllowed = errors.New("detected encoding is not allowed")

	// ErrLowConfidence is returned when detection confidence is below the
	// configured minimum.
	ErrLowConfidence = errors.New("encoding detection confidence too low")

	// ErrInvalidUTF8 is returned when input declared or detected as UTF-8
	// contains invalid byte sequences.
	ErrInvalidUTF8 = errors.New("input is not valid UTF-8")

	// ErrNotDetected is returned when no charset could be detected at all.
	ErrNotDetected = errors.New("encoding could not be detected")
)
