// Package logging builds the zerolog-backed echo logger used by the server
// and its background workers.
package logging

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/ziflex/lecho/v3"

	"github.com/iliyamo/biztime/internal/config"
)

// New returns a logger writing to STDOUT, or to a dated file when
// cfg.FilePath is set.
func New(cfg config.LogConfig) *lecho.Logger {
	logger := lecho.New(
		os.Stdout,
		lecho.WithLevel(ParseLevel(cfg.Level)),
		lecho.WithTimestamp(),
	)
	if cfg.FilePath != "" {
		file, err := openLogFile(cfg.FilePath)
		if err != nil {
			logger.Errorf("failed to create logging file: %v", err)
			return logger
		}
		logger.SetOutput(file)
	}
	return logger
}

// ParseLevel maps a textual level to a gommon level, defaulting to INFO.
func ParseLevel(s string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

// openLogFile appends to path, inserting the current date before the
// extension so each day gets its own file.
func openLogFile(path string) (*os.File, error) {
	ext := filepath.Ext(path)
	day := time.Now().Format("2006-01-02")
	if ext != "" {
		path = strings.TrimSuffix(path, ext) + "-" + day + ext
	} else {
		path = path + "-" + day + ".log"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o664)
}
