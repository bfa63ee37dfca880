package crypto

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed errors below through errors.Is
var (
	ErrKeyTooLong        = errors.New("derived key too long")
	ErrInvalidRounds     = errors.New("invalid round count")
	ErrInvalidKeyLength  = errors.New("invalid key length")
	ErrUnsupportedDigest = errors.New("unsupported digest")
)

// KeyTooLongError is returned when the requested key exceeds (2^32-1) blocks
type KeyTooLongError struct {
	KeyLength int
	MaxLength uint64
	Digest    Digest
}

func (e *KeyTooLongError) Error() string {
	return fmt.Sprintf("derived key length %d exceeds maximum of %d bytes for %s",
		e.KeyLength, e.MaxLength, e.Digest)
}

func (e *KeyTooLongError) Is(target error) bool {
	return target == ErrKeyTooLong
}

// InvalidRoundsError is returned for a round count below 1
type InvalidRoundsError struct {
	Rounds int
}

func (e *InvalidRoundsError) Error() string {
	return fmt.Sprintf("round count must be at least 1, got %d", e.Rounds)
}

func (e *InvalidRoundsError) Is(target error) bool {
	return target == ErrInvalidRounds
}

// InvalidKeyLengthError is returned for a negative key length
type InvalidKeyLengthError struct {
	KeyLength int
}

func (e *InvalidKeyLengthError) Error() string {
	return fmt.Sprintf("key length must not be negative, got %d", e.KeyLength)
}

func (e *InvalidKeyLengthError) Is(target error) bool {
	return target == ErrInvalidKeyLength
}

// UnsupportedDigestError names a digest that is not registered
type UnsupportedDigestError struct {
	Name string
}

func (e *UnsupportedDigestError) Error() string {
	return fmt.Sprintf("unsupported digest %q", e.Name)
}

func (e *UnsupportedDigestError) Is(target error) bool {
	return target == ErrUnsupportedDigest
}
