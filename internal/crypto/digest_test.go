package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDigest(t *testing.T) {
	tests := []struct {
		name string
		want Digest
		size int
	}{
		{"sha1", SHA1, 20},
		{"sha224", SHA224, 28},
		{"SHA256", SHA256, 32},
		{"sha384", SHA384, 48},
		{" sha512 ", SHA512, 64},
		{"sha3-256", SHA3_256, 32},
		{"SHA3-512", SHA3_512, 64},
		{"blake2b-256", BLAKE2b_256, 32},
		{"blake2b-512", BLAKE2b_512, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDigest(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
			assert.Equal(t, tt.size, d.Size())
			assert.Equal(t, tt.size, d.New().Size())
			assert.True(t, d.Valid())
		})
	}
}

func TestParseDigestUnknown(t *testing.T) {
	_, err := ParseDigest("md5")
	require.ErrorIs(t, err, ErrUnsupportedDigest)
	assert.Contains(t, err.Error(), `"md5"`)
}

func TestDigestsRoundTrip(t *testing.T) {
	names := Digests()
	assert.Len(t, names, len(digestRegistry))

	for _, name := range names {
		d, err := ParseDigest(name)
		require.NoError(t, err)
		assert.Equal(t, name, d.String())
	}
}

func TestDefaultDigest(t *testing.T) {
	assert.Equal(t, SHA256, DefaultDigest)
	assert.Equal(t, 32, NewDefaultEngine().BlockSize())
}

func TestUnknownDigest(t *testing.T) {
	d := Digest(99)
	assert.False(t, d.Valid())
	assert.Equal(t, 0, d.Size())
	assert.Equal(t, "digest(99)", d.String())
	assert.Panics(t, func() { d.New() })
}
