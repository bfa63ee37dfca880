package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"keyderiv/internal/crypto"
)

// Parser handles configuration file parsing and validation
type Parser struct {
	configPath string
	config     *Config
}

// NewParser creates a new configuration parser
func NewParser(configPath string) *Parser {
	return &Parser{
		configPath: configPath,
	}
}

// Load reads and parses the configuration file. An empty path yields the defaults.
func (p *Parser) Load() (*Config, error) {
	var data []byte
	if p.configPath != "" {
		var err error
		data, err = os.ReadFile(p.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", p.configPath, err)
		}
	}

	config, err := Parse(data)
	if err != nil {
		return nil, err
	}

	p.config = config
	return config, nil
}

// Parse decodes YAML configuration, applies defaults and validates the result
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	setDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// Default returns a configuration with every default applied
func Default() *Config {
	var config Config
	setDefaults(&config)
	return &config
}

// setDefaults applies default values to configuration
func setDefaults(config *Config) {
	if config.KDF.Digest == "" {
		config.KDF.Digest = DefaultDigest
	}
	if config.KDF.Rounds == 0 {
		config.KDF.Rounds = DefaultRounds
	}
	if config.KDF.KeyLength == 0 {
		config.KDF.KeyLength = DefaultKeyLength
	}
	if config.KDF.Encoding == "" {
		config.KDF.Encoding = DefaultEncoding
	}

	if config.Runtime.LogLevel == "" {
		config.Runtime.LogLevel = DefaultLogLevel
	}
	if config.Runtime.Workers == 0 {
		config.Runtime.Workers = DefaultWorkers
	}
}

// Validate checks a configuration after flags or callers have modified it
func (c *Config) Validate() error {
	return validate(c)
}

// validate performs comprehensive configuration validation
func validate(config *Config) error {
	var errors []string

	digest, err := crypto.ParseDigest(config.KDF.Digest)
	if err != nil {
		errors = append(errors, fmt.Sprintf("kdf: digest must be one of %s, got '%s'",
			strings.Join(crypto.Digests(), ", "), config.KDF.Digest))
	}

	if config.KDF.Rounds < 1 {
		errors = append(errors, fmt.Sprintf("kdf: rounds must be at least 1, got %d", config.KDF.Rounds))
	}

	if config.KDF.KeyLength < 1 {
		errors = append(errors, fmt.Sprintf("kdf: key_length must be at least 1, got %d", config.KDF.KeyLength))
	} else if err == nil {
		engine, _ := crypto.NewEngine(digest)
		if uint64(config.KDF.KeyLength) > engine.MaxKeyLength() {
			errors = append(errors, fmt.Sprintf("kdf: key_length %d exceeds maximum of %d for %s",
				config.KDF.KeyLength, engine.MaxKeyLength(), digest))
		}
	}

	if !isValidEncoding(config.KDF.Encoding) {
		errors = append(errors, fmt.Sprintf("kdf: invalid encoding '%s'", config.KDF.Encoding))
	}

	if _, err := logrus.ParseLevel(config.Runtime.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("runtime: invalid log level '%s'", config.Runtime.LogLevel))
	}

	if config.Runtime.Workers < 1 {
		errors = append(errors, fmt.Sprintf("runtime: workers must be at least 1, got %d", config.Runtime.Workers))
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func isValidEncoding(encoding string) bool {
	switch encoding {
	case EncodingBase64, EncodingHex:
		return true
	default:
		return false
	}
}

// Engine builds the key derivation engine described by the configuration
func (c *Config) Engine() (*crypto.Engine, error) {
	digest, err := crypto.ParseDigest(c.KDF.Digest)
	if err != nil {
		return nil, err
	}
	return crypto.NewEngine(digest)
}

// Reload reloads the configuration from file
func (p *Parser) Reload() (*Config, error) {
	return p.Load()
}

// GetConfig returns the currently loaded configuration
func (p *Parser) GetConfig() *Config {
	return p.config
}
