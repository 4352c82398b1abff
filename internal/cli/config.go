package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read when the matching flag is not set.
const (
	EnvLogLevel  = "QTREE_LOG_LEVEL"
	EnvRemoteURL = "QTREE_REMOTE_URL"
	EnvRedisAddr = "QTREE_REDIS_ADDR"
	EnvRedisPass = "QTREE_REDIS_PASSWORD"
	EnvFunctions = "QTREE_FUNCTIONS"
)

// DefaultFunctionsFile is looked up next to the tree when no functions file is given.
const DefaultFunctionsFile = "functions.yaml"

// Options holds everything the commands need. Zero values mean defaults.
type Options struct {
	// Tree is a tree file path, or a tree ID when Dir is set.
	Tree string
	Dir  string
	Loam bool

	AnswersPath string
	OutPath     string

	JSON   bool
	Survey bool
	Plain  bool

	FunctionsPath    string
	RemoteURL        string
	ConfirmFunctions bool
	CallTimeout      time.Duration

	LockKey   string
	RedisAddr string
	LockTTL   time.Duration

	MaxAttempts int
	Debug       bool
	LogLevel    string
	LogFormat   string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// LoadEnvFile loads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. An empty path loads ".env" when
// it exists.
func LoadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ResolveEnv fills unset options from QTREE_* environment variables and
// the standard streams.
func (o *Options) ResolveEnv() {
	setFromEnv(&o.LogLevel, EnvLogLevel)
	setFromEnv(&o.RemoteURL, EnvRemoteURL)
	setFromEnv(&o.RedisAddr, EnvRedisAddr)
	setFromEnv(&o.FunctionsPath, EnvFunctions)

	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
}

func setFromEnv(field *string, key string) {
	if *field == "" {
		*field = os.Getenv(key)
	}
}
