package crypto

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Digest identifies the hash function underneath the keyed hash
type Digest uint8

const (
	SHA256 Digest = iota
	SHA1
	SHA224
	SHA384
	SHA512
	SHA3_256
	SHA3_512
	BLAKE2b_256
	BLAKE2b_512
)

// DefaultDigest is used when no digest is configured
const DefaultDigest = SHA256

type digestInfo struct {
	name string
	size int
	new  func() hash.Hash
}

// digestRegistry maps every supported digest to its constructor.
// Order of digestNames is the order reported by Digests.
var digestRegistry = map[Digest]digestInfo{
	SHA1:        {"sha1", sha1.Size, sha1.New},
	SHA224:      {"sha224", sha256.Size224, sha256.New224},
	SHA256:      {"sha256", sha256.Size, sha256.New},
	SHA384:      {"sha384", sha512.Size384, sha512.New384},
	SHA512:      {"sha512", sha512.Size, sha512.New},
	SHA3_256:    {"sha3-256", 32, sha3.New256},
	SHA3_512:    {"sha3-512", 64, sha3.New512},
	BLAKE2b_256: {"blake2b-256", blake2b.Size256, newBlake2b256},
	BLAKE2b_512: {"blake2b-512", blake2b.Size, newBlake2b512},
}

var digestNames = []Digest{SHA1, SHA224, SHA256, SHA384, SHA512, SHA3_256, SHA3_512, BLAKE2b_256, BLAKE2b_512}

// blake2b.New* only fails for oversized keys; unkeyed construction cannot error.
func newBlake2b256() hash.Hash {
	h, _ := blake2b.New256(nil)
	return h
}

func newBlake2b512() hash.Hash {
	h, _ := blake2b.New512(nil)
	return h
}

// ParseDigest resolves a digest by name, ignoring case
func ParseDigest(name string) (Digest, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, d := range digestNames {
		if digestRegistry[d].name == want {
			return d, nil
		}
	}
	return 0, &UnsupportedDigestError{Name: name}
}

// Digests returns the names of all supported digests
func Digests() []string {
	names := make([]string, 0, len(digestNames))
	for _, d := range digestNames {
		names = append(names, digestRegistry[d].name)
	}
	return names
}

// Valid reports whether d is a registered digest
func (d Digest) Valid() bool {
	_, ok := digestRegistry[d]
	return ok
}

func (d Digest) String() string {
	if info, ok := digestRegistry[d]; ok {
		return info.name
	}
	return fmt.Sprintf("digest(%d)", uint8(d))
}

// Size returns the digest output length in bytes, or 0 for an unknown digest
func (d Digest) Size() int {
	return digestRegistry[d].size
}

// New returns a fresh hash.Hash for d. It panics on an unregistered digest;
// callers obtain digests from ParseDigest or the package constants.
func (d Digest) New() hash.Hash {
	info, ok := digestRegistry[d]
	if !ok {
		panic(fmt.Sprintf("crypto: unsupported digest %d", uint8(d)))
	}
	return info.new()
}
