package config

// Config represents the main configuration structure
type Config struct {
	KDF     KDFConfig     `yaml:"kdf"`
	Runtime RuntimeConfig `yaml:"runtime"`
}

// KDFConfig defines the key derivation parameters
type KDFConfig struct {
	Digest    string `yaml:"digest"`
	Rounds    int    `yaml:"rounds"`
	KeyLength int    `yaml:"key_length"`
	Encoding  string `yaml:"encoding"`
}

// RuntimeConfig defines logging and batch execution settings
type RuntimeConfig struct {
	LogLevel string `yaml:"log_level"`
	Workers  int    `yaml:"workers"`
}

// Output encodings for derived keys
const (
	EncodingBase64 = "base64"
	EncodingHex    = "hex"
)

// Defaults applied to unset fields
const (
	DefaultDigest    = "sha256"
	DefaultRounds    = 10000
	DefaultKeyLength = 32
	DefaultEncoding  = EncodingBase64
	DefaultLogLevel  = "info"
	DefaultWorkers   = 4
)
