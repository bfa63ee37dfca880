package batch

import (
	"encoding/base64"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// requestFile is the YAML layout of a batch file
type requestFile struct {
	Requests []requestEntry `yaml:"requests"`
}

type requestEntry struct {
	ID         string `yaml:"id"`
	Password   string `yaml:"password"`
	Salt       string `yaml:"salt,omitempty"`
	SaltBase64 string `yaml:"salt_base64,omitempty"`
}

// LoadRequests reads batch requests from a YAML file
func LoadRequests(path string) ([]Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file %s: %w", path, err)
	}
	return ParseRequests(data)
}

// ParseRequests decodes batch requests. Each entry gives its salt either as
// text or as standard base64 for binary salts, never both.
func ParseRequests(data []byte) ([]Request, error) {
	var file requestFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse batch file: %w", err)
	}

	requests := make([]Request, 0, len(file.Requests))
	seen := make(map[string]bool, len(file.Requests))
	for i, entry := range file.Requests {
		id := entry.ID
		if id == "" {
			id = fmt.Sprintf("request-%d", i+1)
		}
		if seen[id] {
			return nil, fmt.Errorf("requests[%d]: duplicate id '%s'", i, id)
		}
		seen[id] = true

		salt := []byte(entry.Salt)
		if entry.SaltBase64 != "" {
			if entry.Salt != "" {
				return nil, fmt.Errorf("requests[%d]: salt and salt_base64 are mutually exclusive", i)
			}
			decoded, err := base64.StdEncoding.DecodeString(entry.SaltBase64)
			if err != nil {
				return nil, fmt.Errorf("requests[%d]: invalid salt_base64: %w", i, err)
			}
			salt = decoded
		}

		requests = append(requests, Request{
			ID:       id,
			Password: []byte(entry.Password),
			Salt:     salt,
		})
	}

	return requests, nil
}
