package localfs

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/resume-parser/internal/core/domain"
)

func TestStorageLifecycle(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	if err := s.Save(ctx, "abc_resume.pdf", strings.NewReader("%PDF-1.4")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	ok, err := s.Exists(ctx, "abc_resume.pdf")
	if err != nil || !ok {
		t.Fatalf("Exists() = %v, %v", ok, err)
	}

	rc, err := s.Open(ctx, "abc_resume.pdf")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "%PDF-1.4" {
		t.Fatalf("unexpected body %q", body)
	}

	if err := s.Delete(ctx, "abc_resume.pdf"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, "abc_resume.pdf"); err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}
	if ok, _ := s.Exists(ctx, "abc_resume.pdf"); ok {
		t.Fatalf("file still exists after Delete()")
	}

	if _, err := s.Open(ctx, "abc_resume.pdf"); !errors.Is(err, domain.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestStoragePathStaysInsideBase(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	got := s.Path("../../etc/passwd")
	if filepath.Dir(got) != s.basePath {
		t.Fatalf("Path() escaped base dir: %s", got)
	}
}
