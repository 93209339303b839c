package app

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const outputPrefix = "Termo_entrega_"

func outputBase(name string, now time.Time) string {
	return outputPrefix + safeName(name) + "_" + now.Format("20060102_150405")
}

// safeName keeps a user name usable as a single path element.
func safeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "SEM_NOME"
	}
	return name
}

// removeStale deletes earlier outputs generated for the same employee.
func removeStale(logger *zap.Logger, name string, dirs ...string) {
	prefix := outputPrefix + safeName(name) + "_"
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.Warn("could not list output dir", zap.String("dir", dir), zap.Error(err))
			}
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				logger.Warn("could not delete old file", zap.String("path", path), zap.Error(err))
				continue
			}
			logger.Info("deleted old file", zap.String("path", path))
		}
	}
}
