package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"keyderiv/internal/batch"
	"keyderiv/internal/config"
	"keyderiv/internal/crypto"
)

const (
	toolVersion = "1.0.0"
	toolName    = "keyderiv"

	passwordEnv = "KEYDERIV_PASSWORD"
)

// options holds parsed command line flags
type options struct {
	configPath  string
	digest      string
	rounds      int
	length      int
	salt        string
	saltBase64  string
	encoding    string
	batchPath   string
	logLevel    string
	listDigests bool
	version     bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Getenv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logrus.WithError(err).Error("Key derivation failed")
		os.Exit(1)
	}
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet(toolName, flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	fs.StringVar(&opts.digest, "digest", "", "Digest algorithm (overrides config)")
	fs.IntVar(&opts.rounds, "rounds", 0, "Round count (overrides config)")
	fs.IntVar(&opts.length, "length", 0, "Derived key length in bytes (overrides config)")
	fs.StringVar(&opts.salt, "salt", "", "Salt text")
	fs.StringVar(&opts.saltBase64, "salt-base64", "", "Salt as standard base64")
	fs.StringVar(&opts.encoding, "encoding", "", "Output encoding: base64 or hex (overrides config)")
	fs.StringVar(&opts.batchPath, "batch", "", "YAML file of requests to derive concurrently")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&opts.listDigests, "list-digests", false, "List supported digests and exit")
	fs.BoolVar(&opts.version, "version", false, "Show version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.salt != "" && opts.saltBase64 != "" {
		return nil, fmt.Errorf("-salt and -salt-base64 are mutually exclusive")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdin *os.File, stdout io.Writer, getenv func(string) string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	if opts.version {
		fmt.Fprintf(stdout, "%s version %s\n", toolName, toolVersion)
		return nil
	}
	if opts.listDigests {
		for _, name := range crypto.Digests() {
			fmt.Fprintln(stdout, name)
		}
		return nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if err := setupLogging(cfg.Runtime.LogLevel); err != nil {
		return err
	}

	engine, err := cfg.Engine()
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"digest":     engine.Digest().String(),
		"rounds":     cfg.KDF.Rounds,
		"key_length": cfg.KDF.KeyLength,
		"encoding":   cfg.KDF.Encoding,
	}).Debug("Key derivation engine initialized")

	if opts.batchPath != "" {
		return runBatch(ctx, engine, cfg, opts.batchPath, stdout)
	}

	salt, err := saltFromOptions(opts)
	if err != nil {
		return err
	}

	password, err := readPassword(stdin, getenv)
	if err != nil {
		return err
	}

	start := time.Now()
	dk, err := engine.DeriveKeyBytes(password, salt, cfg.KDF.Rounds, cfg.KDF.KeyLength)
	if err != nil {
		return fmt.Errorf("failed to derive key: %w", err)
	}
	logrus.WithField("duration", time.Since(start)).Debug("Key derived")

	fmt.Fprintln(stdout, encodeKey(dk, cfg.KDF.Encoding))
	return nil
}

// loadConfig reads the configuration file and applies flag overrides
func loadConfig(opts *options) (*config.Config, error) {
	parser := config.NewParser(opts.configPath)
	cfg, err := parser.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.digest != "" {
		cfg.KDF.Digest = opts.digest
	}
	if opts.rounds != 0 {
		cfg.KDF.Rounds = opts.rounds
	}
	if opts.length != 0 {
		cfg.KDF.KeyLength = opts.length
	}
	if opts.encoding != "" {
		cfg.KDF.Encoding = opts.encoding
	}
	if opts.logLevel != "" {
		cfg.Runtime.LogLevel = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

// setupLogging configures the logging system
func setupLogging(level string) error {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	parsedLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %s: %w", level, err)
	}

	logrus.SetLevel(parsedLevel)
	return nil
}

func saltFromOptions(opts *options) ([]byte, error) {
	if opts.saltBase64 == "" {
		return []byte(opts.salt), nil
	}
	salt, err := base64.StdEncoding.DecodeString(opts.saltBase64)
	if err != nil {
		return nil, fmt.Errorf("invalid -salt-base64: %w", err)
	}
	return salt, nil
}

// readPassword takes the password from the environment, a terminal prompt or
// the first line of stdin, in that order
func readPassword(stdin *os.File, getenv func(string) string) ([]byte, error) {
	if password := getenv(passwordEnv); password != "" {
		return []byte(password), nil
	}

	if fd := int(stdin.Fd()); term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Password: ")
		password, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
		return password, nil
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

func encodeKey(dk []byte, encoding string) string {
	if encoding == config.EncodingHex {
		return hex.EncodeToString(dk)
	}
	return base64.StdEncoding.EncodeToString(dk)
}

func runBatch(ctx context.Context, engine *crypto.Engine, cfg *config.Config, path string, stdout io.Writer) error {
	requests, err := batch.LoadRequests(path)
	if err != nil {
		return err
	}

	deriver, err := batch.New(engine, batch.Config{
		Rounds:    cfg.KDF.Rounds,
		KeyLength: cfg.KDF.KeyLength,
		Workers:   cfg.Runtime.Workers,
	}, logrus.NewEntry(logrus.StandardLogger()))
	if err != nil {
		return fmt.Errorf("failed to create batch deriver: %w", err)
	}

	results, err := deriver.Derive(ctx, requests)
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(stdout, "%s\terror: %v\n", r.ID, r.Err)
			continue
		}
		fmt.Fprintf(stdout, "%s\t%s\n", r.ID, encodeKey(r.Key, cfg.KDF.Encoding))
	}
	if err != nil {
		return err
	}

	stats := deriver.GetStatistics()
	logrus.WithFields(logrus.Fields{
		"derived":        stats.Derived,
		"failed":         stats.Failed,
		"total_duration": stats.TotalDuration,
	}).Info("Batch complete")

	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d derivations failed", stats.Failed, len(requests))
	}
	return nil
}
