package crypto

import (
	"crypto/hmac"
	"hash"
)

// KeyedHash is an HMAC computation with its key fixed at construction.
// Start begins a new message, Feed appends a chunk and Finalize appends the
// MAC of everything fed since Start to dst.
type KeyedHash interface {
	Start()
	Feed(chunk []byte)
	Finalize(dst []byte) []byte
	Size() int
}

// streamingHMAC keys the HMAC once and resets it for every message, so the
// padded key blocks are not recomputed per round.
type streamingHMAC struct {
	mac hash.Hash
}

func newStreamingHMAC(d Digest, key []byte) KeyedHash {
	return &streamingHMAC{mac: hmac.New(d.New, key)}
}

func (s *streamingHMAC) Start() {
	s.mac.Reset()
}

func (s *streamingHMAC) Feed(chunk []byte) {
	// hash.Hash.Write never returns an error
	s.mac.Write(chunk)
}

func (s *streamingHMAC) Finalize(dst []byte) []byte {
	return s.mac.Sum(dst)
}

func (s *streamingHMAC) Size() int {
	return s.mac.Size()
}

// oneShotHMAC buffers the message and keys a fresh HMAC on Finalize
type oneShotHMAC struct {
	digest Digest
	key    []byte
	buf    []byte
}

func newOneShotHMAC(d Digest, key []byte) KeyedHash {
	return &oneShotHMAC{digest: d, key: append([]byte(nil), key...)}
}

func (o *oneShotHMAC) Start() {
	o.buf = o.buf[:0]
}

func (o *oneShotHMAC) Feed(chunk []byte) {
	o.buf = append(o.buf, chunk...)
}

func (o *oneShotHMAC) Finalize(dst []byte) []byte {
	return append(dst, ComputeHMAC(o.digest, o.key, o.buf)...)
}

func (o *oneShotHMAC) Size() int {
	return o.digest.Size()
}

// ComputeHMAC returns HMAC(key, message) over the given digest
func ComputeHMAC(d Digest, key, message []byte) []byte {
	mac := hmac.New(d.New, key)
	mac.Write(message)
	return mac.Sum(nil)
}
