package storage

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/docker/go-units"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/ruteri/legal-document-registry/interfaces"
)

// DefaultMaxUploadSize is the upload limit when none is configured.
const DefaultMaxUploadSize = 10 * units.MiB

// FileField is the form field name used in file validation errors.
const FileField = "file"

// documentTypes maps accepted extensions to the MIME types content sniffing
// may report for them. Container types are accepted since sniffing cannot
// always see past them.
var documentTypes = map[string][]string{
	"pdf":  {"application/pdf"},
	"doc":  {"application/msword", "application/x-ole-storage"},
	"docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
}

// canonicalTypes is the Content-Type sent for each extension.
var canonicalTypes = map[string]string{
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// FilePolicy decides which uploads are accepted.
type FilePolicy struct {
	maxSize int64
	allowed map[string]bool
}

// NewFilePolicy creates a policy. A non-positive maxSize selects
// DefaultMaxUploadSize; an empty allow-list accepts every known document type.
func NewFilePolicy(maxSize int64, allowedTypes []string) *FilePolicy {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}

	allowed := make(map[string]bool)
	for _, t := range allowedTypes {
		t = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(t), "."))
		if _, known := documentTypes[t]; known {
			allowed[t] = true
		}
	}
	if len(allowed) == 0 {
		for t := range documentTypes {
			allowed[t] = true
		}
	}

	return &FilePolicy{maxSize: maxSize, allowed: allowed}
}

// MaxSize returns the upload limit in bytes.
func (p *FilePolicy) MaxSize() int64 {
	return p.maxSize
}

// Allowed returns the accepted extensions, sorted.
func (p *FilePolicy) Allowed() []string {
	out := make([]string, 0, len(p.allowed))
	for t := range p.allowed {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Check validates size and type of a file. It returns the message to attach
// to the file field, or an empty string if the file is acceptable.
func (p *FilePolicy) Check(file *interfaces.FileUpload) string {
	if file == nil || len(file.Data) == 0 {
		return "file is required"
	}
	if file.Size() > p.maxSize {
		return fmt.Sprintf("file exceeds the maximum size of %s", units.BytesSize(float64(p.maxSize)))
	}

	ext := Extension(file.Name)
	if !p.allowed[ext] {
		return fmt.Sprintf("file type %q is not accepted (allowed: %s)", ext, strings.Join(p.Allowed(), ", "))
	}

	detected := mimetype.Detect(file.Data)
	if !matchesType(detected, documentTypes[ext]) {
		return fmt.Sprintf("file content (%s) does not match its .%s extension", detected.String(), ext)
	}

	return ""
}

// Normalize sets the canonical Content-Type for the file's extension.
func (p *FilePolicy) Normalize(file *interfaces.FileUpload) {
	if ct, ok := canonicalTypes[Extension(file.Name)]; ok {
		file.ContentType = ct
	}
}

// Extension returns the lowercase extension of name without the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

func matchesType(detected *mimetype.MIME, accepted []string) bool {
	for m := detected; m != nil; m = m.Parent() {
		for _, want := range accepted {
			if m.Is(want) {
				return true
			}
		}
	}
	return false
}

// PageCount returns the number of pages of a PDF document.
func PageCount(data []byte) (int, error) {
	return api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
}
