package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a thin sugared wrapper that scrubs sensitive keys before they
// reach the sink.
type Logger struct {
	sugar *zap.SugaredLogger
}

// Options configures New.
type Options struct {
	// Mode selects the encoder: "prod" writes JSON, anything else writes the
	// human-readable development format.
	Mode string

	// Path is the log file. The TUI owns stdout, so logs never go there.
	Path string

	// Level is the minimum level. Default: debug in dev, info in prod.
	Level string
}

// New builds a Logger that appends to opts.Path.
func New(opts Options) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(opts.Mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	if opts.Level != "" {
		lvl, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		cfg.OutputPaths = []string{opts.Path}
		cfg.ErrorOutputPaths = []string{opts.Path}
	}

	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{sugar: z.Sugar()}, nil
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// FromZap wraps an existing zap logger. Used by tests with zaptest/observer.
func FromZap(z *zap.Logger) *Logger {
	return &Logger{sugar: z.Sugar()}
}

func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}

func (l *Logger) Debug(msg string, kv ...any) { l.sugar.Debugw(msg, sanitize(kv)...) }
func (l *Logger) Info(msg string, kv ...any)  { l.sugar.Infow(msg, sanitize(kv)...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.sugar.Warnw(msg, sanitize(kv)...) }
func (l *Logger) Error(msg string, kv ...any) { l.sugar.Errorw(msg, sanitize(kv)...) }

// With returns a child logger carrying the given fields.
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{sugar: l.sugar.With(sanitize(kv)...)}
}

// DefaultPath resolves the log file location:
// 1. CAPSULEMED_LOG environment variable
// 2. $XDG_STATE_HOME/capsulemed/capsulemed.log
// 3. ~/.local/state/capsulemed/capsulemed.log
func DefaultPath() (string, error) {
	if p := os.Getenv("CAPSULEMED_LOG"); p != "" {
		return p, nil
	}
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "capsulemed", "capsulemed.log"), nil
}

func sanitize(kv []any) []any {
	if len(kv) == 0 {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := fmt.Sprint(kv[i])
		out = append(out, key, scrub(strings.ToLower(strings.TrimSpace(key)), kv[i+1]))
	}
	return out
}

func scrub(key string, val any) any {
	switch {
	case redacted(key):
		return "[REDACTED]"
	case key == "uid" || strings.HasSuffix(key, "_uid") || strings.HasSuffix(key, "user_id"):
		return hashValue(val)
	}
	return val
}

func redacted(key string) bool {
	for _, k := range []string{"password", "secret", "token", "api_key", "apikey", "authorization", "email"} {
		if strings.HasSuffix(key, k) {
			return true
		}
	}
	return false
}

func hashValue(val any) string {
	s := fmt.Sprint(val)
	if s == "" {
		return ""
	}
	sum := sha256.Sum256([]byte("capsulemed:" + s))
	return hex.EncodeToString(sum[:])[:12]
}
