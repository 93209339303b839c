package docx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"termo/api/internal/logging"
)

var (
	// ErrConverterMissing indicates the LibreOffice binary is not installed.
	ErrConverterMissing = errors.New("docx converter missing")
	// ErrConversionFailed indicates the converter ran but produced no PDF.
	ErrConversionFailed = errors.New("docx conversion failed")
)

// Converter turns saved DOCX files into PDF with a headless LibreOffice.
type Converter struct {
	binary  string
	timeout time.Duration
	logger  *zap.Logger
}

func NewConverter(binary string, timeout time.Duration, logger *zap.Logger) *Converter {
	return &Converter{
		binary:  binary,
		timeout: timeout,
		logger:  logging.OrNop(logger).Named("convert"),
	}
}

// Convert writes <outDir>/<basename>.pdf and returns its path.
func (c *Converter) Convert(ctx context.Context, docxPath, outDir string) (string, error) {
	binary, err := exec.LookPath(c.binary)
	if err != nil {
		return "", fmt.Errorf("%w: %s not installed", ErrConverterMissing, c.binary)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create pdf dir: %w", err)
	}

	// Each run gets its own profile so parallel conversions do not collide
	// on the LibreOffice user lock.
	profile, err := os.MkdirTemp("", "termo-soffice-*")
	if err != nil {
		return "", fmt.Errorf("create converter profile: %w", err)
	}
	defer os.RemoveAll(profile)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, binary,
		"-env:UserInstallation=file://"+filepath.ToSlash(profile),
		"--headless",
		"--norestore",
		"--nolockcheck",
		"--nofirststartwizard",
		"--nologo",
		"--convert-to", "pdf",
		"--outdir", outDir,
		docxPath,
	)
	cmd.WaitDelay = time.Second
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: timed out after %s", ErrConversionFailed, c.timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: %s", ErrConversionFailed, strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}

	base := strings.TrimSuffix(filepath.Base(docxPath), filepath.Ext(docxPath))
	pdfPath := filepath.Join(outDir, base+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return "", fmt.Errorf("%w: %s not produced", ErrConversionFailed, pdfPath)
	}

	c.logger.Info("document converted",
		zap.String("input", docxPath),
		zap.String("output", pdfPath),
		zap.Duration("duration", time.Since(start)))
	return pdfPath, nil
}
