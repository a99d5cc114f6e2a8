package logging

import (
	"io"
	"log"
	"os"

	"agency-backend/internal/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup points the standard logger at stdout and, when LOG_FILE is set, a
// size-rotated file. The returned closer flushes the file writer.
func Setup(cfg *config.Config) io.Closer {
	w, closer := Writer(cfg)
	log.SetOutput(w)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return closer
}

// Writer builds the log sink without installing it.
func Writer(cfg *config.Config) (io.Writer, io.Closer) {
	if cfg.LogFile == "" {
		return os.Stdout, io.NopCloser(nil)
	}
	file := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		Compress:   true,
	}
	return io.MultiWriter(os.Stdout, file), file
}
