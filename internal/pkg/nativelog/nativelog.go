package nativelog

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	EnvLogDir         = "PENLINE_LOG_DIR"
	LogFilename       = "penline.log"
	defaultMaxSizeMB  = 20
	defaultMaxBackups = 7
	defaultLogDirPerm = 0o755
)

// Options configures NewZapLogger. Zero values fall back to defaults.
type Options struct {
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	Debug      bool
	// Stdout replaces os.Stdout as the console sink.
	Stdout io.Writer
}

// ResolveDir picks the log directory: explicit, then $PENLINE_LOG_DIR, then ./logs.
func ResolveDir(dir string) string {
	if d := strings.TrimSpace(dir); d != "" {
		return d
	}
	if d := strings.TrimSpace(os.Getenv(EnvLogDir)); d != "" {
		return d
	}
	return filepath.Join(".", "logs")
}

// NewFileWriter returns a size-rotated writer for the application log file.
func NewFileWriter(opts Options) (*lumberjack.Logger, error) {
	dir := ResolveDir(opts.Dir)
	if err := os.MkdirAll(dir, defaultLogDirPerm); err != nil {
		return nil, err
	}
	size := opts.MaxSizeMB
	if size <= 0 {
		size = defaultMaxSizeMB
	}
	backups := opts.MaxBackups
	if backups <= 0 {
		backups = defaultMaxBackups
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, LogFilename),
		MaxSize:    size,
		MaxBackups: backups,
		LocalTime:  true,
		Compress:   true,
	}, nil
}

// NewZapLogger creates a zap logger that writes console-encoded entries to
// stdout and to the rotated log file.
func NewZapLogger(opts Options) (*zap.Logger, error) {
	writer, err := NewFileWriter(opts)
	if err != nil {
		return nil, err
	}

	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if opts.Debug {
		level.SetLevel(zap.DebugLevel)
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")

	var stdout zapcore.WriteSyncer = zapcore.Lock(os.Stdout)
	if opts.Stdout != nil {
		stdout = zapcore.AddSync(opts.Stdout)
	}

	encoder := zapcore.NewConsoleEncoder(encoderConfig)
	core := zapcore.NewTee(
		zapcore.NewCore(encoder, stdout, level),
		zapcore.NewCore(encoder, zapcore.AddSync(writer), level),
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	_ = zap.RedirectStdLog(logger)
	return logger, nil
}
