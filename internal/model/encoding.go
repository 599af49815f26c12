package model

// EncodingSource tells where the charset used for decoding came from.
type EncodingSource string

const (
	// EncodingSourceBOM means a byte order mark identified the charset.
	EncodingSourceBOM EncodingSource = "bom"

	// EncodingSourceDetected means statistical detection chose the charset.
	EncodingSourceDetected EncodingSource = "detected"

	// EncodingSourceConfigured means the user forced the charset.
	EncodingSourceConfigured EncodingSource = "configured"
)

// Encoding describes the character encoding of an input file.
type Encoding struct {
	// Charset is the charset name, e.g. "UTF-8" or "windows-1251".
	Charset string `json:"charset"`

	// Language is the language hint reported by detection, if any.
	Language string `json:"language,omitempty"`

	// Confidence is the detection confidence from 0 to 100.
	Confidence int `json:"confidence"`

	// Source tells how the charset was chosen.
	Source EncodingSource `json:"source"`
}
