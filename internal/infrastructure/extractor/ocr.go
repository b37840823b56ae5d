package extractor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const (
	defaultOCRBinary = "tesseract"
	defaultOCRLang   = "eng"
)

// Runner executes an external command and returns its stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), nil
}

// OCR recognizes image text with the tesseract CLI. It is the only backend
// that performs OCR.
type OCR struct {
	runner Runner
	binary string
	lang   string
}

func NewOCR(runner Runner, binary, lang string) *OCR {
	if runner == nil {
		runner = ExecRunner{}
	}
	if strings.TrimSpace(binary) == "" {
		binary = defaultOCRBinary
	}
	if strings.TrimSpace(lang) == "" {
		lang = defaultOCRLang
	}
	return &OCR{runner: runner, binary: binary, lang: lang}
}

func (o *OCR) Extract(ctx context.Context, path string) (string, error) {
	out, err := o.runner.Run(ctx, o.binary, path, "stdout", "-l", o.lang)
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return string(out), nil
}
