package crypto

import (
	"encoding/base64"
)

// maxBlockCount is the largest block index a 32-bit big-endian counter can hold
const maxBlockCount = 1<<32 - 1

// Engine derives keys with PBKDF2 over HMAC of a fixed digest.
// An Engine is immutable and safe for concurrent use.
type Engine struct {
	digest    Digest
	blockSize int
	maxBlocks uint64
	keyedHash func(d Digest, key []byte) KeyedHash
}

// NewEngine creates an engine for the given digest
func NewEngine(d Digest) (*Engine, error) {
	if !d.Valid() {
		return nil, &UnsupportedDigestError{Name: d.String()}
	}
	return &Engine{
		digest:    d,
		blockSize: d.Size(),
		maxBlocks: maxBlockCount,
		keyedHash: newStreamingHMAC,
	}, nil
}

// NewDefaultEngine creates an engine using SHA-256
func NewDefaultEngine() *Engine {
	e, _ := NewEngine(DefaultDigest)
	return e
}

// WithOneShotHMAC returns a copy of the engine that keys a fresh HMAC for
// every round instead of reusing one keyed instance
func (e *Engine) WithOneShotHMAC() *Engine {
	c := *e
	c.keyedHash = newOneShotHMAC
	return &c
}

// Digest returns the engine's digest
func (e *Engine) Digest() Digest {
	return e.digest
}

// BlockSize returns the number of derived key bytes produced per block
func (e *Engine) BlockSize() int {
	return e.blockSize
}

// MaxKeyLength returns the longest key the engine can derive
func (e *Engine) MaxKeyLength() uint64 {
	return e.maxBlocks * uint64(e.blockSize)
}

// DeriveKey derives keyLength bytes from a UTF-8 password and salt
func (e *Engine) DeriveKey(password, salt string, rounds, keyLength int) ([]byte, error) {
	return e.DeriveKeyBytes([]byte(password), []byte(salt), rounds, keyLength)
}

// DeriveKeyBase64 returns DeriveKey encoded as standard padded base64
func (e *Engine) DeriveKeyBase64(password, salt string, rounds, keyLength int) (string, error) {
	dk, err := e.DeriveKey(password, salt, rounds, keyLength)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(dk), nil
}

// DeriveKeyBytes derives keyLength bytes from raw password and salt bytes
func (e *Engine) DeriveKeyBytes(password, salt []byte, rounds, keyLength int) ([]byte, error) {
	if err := e.checkParams(rounds, keyLength); err != nil {
		return nil, err
	}

	hLen := e.blockSize
	numBlocks := (keyLength + hLen - 1) / hLen

	prf := e.keyedHash(e.digest, password)
	dk := make([]byte, 0, numBlocks*hLen)
	u := make([]byte, 0, hLen)
	var counter [4]byte

	for block := 1; block <= numBlocks; block++ {
		counter[0] = byte((block >> 24) & 0xff)
		counter[1] = byte((block >> 16) & 0xff)
		counter[2] = byte((block >> 8) & 0xff)
		counter[3] = byte(block & 0xff)

		prf.Start()
		prf.Feed(salt)
		prf.Feed(counter[:])
		u = prf.Finalize(u[:0])

		dk = append(dk, u...)
		t := dk[len(dk)-hLen:]

		for r := 2; r <= rounds; r++ {
			prf.Start()
			prf.Feed(u)
			u = prf.Finalize(u[:0])
			for i := range t {
				t[i] ^= u[i]
			}
		}
	}

	// the final block is cut from its start
	return dk[:keyLength], nil
}

func (e *Engine) checkParams(rounds, keyLength int) error {
	if keyLength < 0 {
		return &InvalidKeyLengthError{KeyLength: keyLength}
	}
	if limit := e.MaxKeyLength(); uint64(keyLength) > limit {
		return &KeyTooLongError{KeyLength: keyLength, MaxLength: limit, Digest: e.digest}
	}
	if rounds < 1 {
		return &InvalidRoundsError{Rounds: rounds}
	}
	return nil
}
