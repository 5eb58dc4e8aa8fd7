package storage

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/docker/go-units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/legal-document-registry/interfaces"
)

func pdfBytes(size int) []byte {
	data := []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	if size > len(data) {
		data = append(data, bytes.Repeat([]byte{'0'}, size-len(data))...)
	}
	return data
}

func docxBytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range []string{"[Content_Types].xml", "word/document.xml"} {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte("<?xml version=\"1.0\"?><document/>"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestFilePolicy_Check(t *testing.T) {
	policy := NewFilePolicy(10*units.MiB, []string{"pdf", ".DOCX", "doc"})

	tests := []struct {
		name    string
		file    *interfaces.FileUpload
		wantErr string
	}{
		{name: "pdf accepted", file: &interfaces.FileUpload{Name: "nda.pdf", Data: pdfBytes(1024)}},
		{name: "uppercase extension", file: &interfaces.FileUpload{Name: "NDA.PDF", Data: pdfBytes(64)}},
		{name: "docx accepted", file: &interfaces.FileUpload{Name: "lease.docx", Data: docxBytes(t)}},
		{name: "exactly at limit", file: &interfaces.FileUpload{Name: "big.pdf", Data: pdfBytes(10 * units.MiB)}},
		{name: "missing file", file: nil, wantErr: "file is required"},
		{name: "empty file", file: &interfaces.FileUpload{Name: "empty.pdf"}, wantErr: "file is required"},
		{name: "oversized", file: &interfaces.FileUpload{Name: "huge.pdf", Data: pdfBytes(11 * units.MiB)}, wantErr: "maximum size of 10MiB"},
		{name: "extension not allowed", file: &interfaces.FileUpload{Name: "notes.txt", Data: []byte("hello")}, wantErr: "not accepted"},
		{name: "no extension", file: &interfaces.FileUpload{Name: "contract", Data: pdfBytes(64)}, wantErr: "not accepted"},
		{name: "content contradicts extension", file: &interfaces.FileUpload{Name: "fake.pdf", Data: []byte("just some plain text")}, wantErr: "does not match"},
		{name: "text disguised as docx", file: &interfaces.FileUpload{Name: "fake.docx", Data: []byte("plain text, not a zip")}, wantErr: "does not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := policy.Check(tt.file)
			if tt.wantErr == "" {
				assert.Empty(t, msg)
			} else {
				assert.Contains(t, msg, tt.wantErr)
			}
		})
	}
}

func TestFilePolicy_Defaults(t *testing.T) {
	policy := NewFilePolicy(0, nil)
	assert.Equal(t, int64(DefaultMaxUploadSize), policy.MaxSize())
	assert.Equal(t, []string{"doc", "docx", "pdf"}, policy.Allowed())

	restricted := NewFilePolicy(units.KiB, []string{"pdf", "exe"})
	assert.Equal(t, []string{"pdf"}, restricted.Allowed())
	assert.Contains(t, restricted.Check(&interfaces.FileUpload{Name: "a.docx", Data: docxBytes(t)}), "not accepted")
}

func TestFilePolicy_Normalize(t *testing.T) {
	policy := NewFilePolicy(0, nil)

	file := &interfaces.FileUpload{Name: "nda.pdf", ContentType: "application/octet-stream"}
	policy.Normalize(file)
	assert.Equal(t, "application/pdf", file.ContentType)

	file = &interfaces.FileUpload{Name: "lease.docx"}
	policy.Normalize(file)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", file.ContentType)
}

func TestPageCount_Invalid(t *testing.T) {
	_, err := PageCount([]byte("not a pdf"))
	assert.Error(t, err)
}
