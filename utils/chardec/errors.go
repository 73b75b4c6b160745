package chardec

import "errors"

var (
	// ErrInvalidStartByte indicates a byte that cannot begin a UTF-8 sequence
	// pushed while no sequence was pending.
	ErrInvalidStartByte = errors.New("invalid utf-8 start byte")

	// ErrIncomplete indicates a read or reset while a multi-byte character is
	// still missing bytes.
	ErrIncomplete = errors.New("multi-byte character incomplete")

	// ErrEmpty indicates a pop from an empty decoder.
	ErrEmpty = errors.New("decoder empty")

	// ErrNotSingleByte indicates a pop whose last byte belongs to a multi-byte character.
	ErrNotSingleByte = errors.New("last character is not a single byte")
)
