package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileKind is the closed set of formats the extractor can read.
type FileKind string

const (
	FileKindPDF   FileKind = "pdf"
	FileKindDOCX  FileKind = "docx"
	FileKindImage FileKind = "image"
)

var imageTypes = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"bmp":  {},
	"tiff": {},
}

// FileKindFromType maps a declared file type (an extension, with or without
// the dot) to its FileKind.
func FileKindFromType(declared string) (FileKind, error) {
	t := NormalizeFileType(declared)
	switch t {
	case "pdf":
		return FileKindPDF, nil
	case "docx":
		return FileKindDOCX, nil
	}
	if _, ok := imageTypes[t]; ok {
		return FileKindImage, nil
	}
	return "", WrapError(ErrUnsupportedFormat, "detect file kind", fmt.Errorf("unsupported file type: %q", declared))
}

// NormalizeFileType lowercases a declared type and strips a leading dot.
func NormalizeFileType(declared string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(declared)), ".")
}

// FileTypeFromName returns the normalized extension of a filename.
func FileTypeFromName(name string) string {
	return NormalizeFileType(filepath.Ext(name))
}

// UploadedDocument is a stored upload waiting to be parsed. StorageKey
// addresses the file in upload storage; Path is its resolved location on disk.
type UploadedDocument struct {
	StorageKey string `json:"storageKey"`
	Path       string `json:"path"`
	FileType   string `json:"fileType"`
	FileName   string `json:"fileName"`
	UploaderID string `json:"uploaderId,omitempty"`
}
