package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequests(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
requests:
  - id: alice
    password: "correct horse"
    salt: "pepper"
  - password: "battery staple"
    salt_base64: "AAEC/w=="
  - id: carol
    password: ""
`), 0600))

	requests, err := LoadRequests(path)
	require.NoError(t, err)
	require.Len(t, requests, 3)

	assert.Equal(t, Request{ID: "alice", Password: []byte("correct horse"), Salt: []byte("pepper")}, requests[0])
	assert.Equal(t, "request-2", requests[1].ID)
	assert.Equal(t, []byte{0x00, 0x01, 0x02, 0xff}, requests[1].Salt)
	assert.Equal(t, "carol", requests[2].ID)
	assert.Empty(t, requests[2].Password)
	assert.Empty(t, requests[2].Salt)
}

func TestParseRequestsErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "requests: [", "failed to parse batch file"},
		{"duplicate id", "requests:\n  - id: a\n  - id: a\n", "duplicate id 'a'"},
		{"both salts", "requests:\n  - salt: x\n    salt_base64: eA==\n", "mutually exclusive"},
		{"bad base64", "requests:\n  - salt_base64: '***'\n", "invalid salt_base64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequests([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadRequestsMissingFile(t *testing.T) {
	_, err := LoadRequests(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
