package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestResolveMimeType(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		fileName string
		want     string
		wantErr  error
	}{
		{
			name:     "pdf by magic bytes",
			data:     []byte("%PDF-1.4\n%fake pdf body"),
			fileName: "resume.pdf",
			want:     "application/pdf",
		},
		{
			name: "pdf magic wins over misleading extension",
			// sniffing is conclusive, so the .txt extension is ignored
			data:     []byte("%PDF-1.4\n%fake pdf body"),
			fileName: "resume.txt",
			want:     "application/pdf",
		},
		{
			name:     "plain text",
			data:     []byte("plain text resume contents"),
			fileName: "resume.txt",
			want:     "text/plain",
		},
		{
			name:     "rtf document",
			data:     []byte(`{\rtf1\ansi\deff0 {\fonttbl {\f0 Times;}}Hello}`),
			fileName: "offer.rtf",
			want:     "text/rtf",
		},
		{
			name: "zip container falls back to docx extension",
			// a bare zip header is inconclusive; the extension decides
			data:     append([]byte{'P', 'K', 0x03, 0x04}, bytes.Repeat([]byte{0}, 32)...),
			fileName: "contract.docx",
			want:     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		},
		{
			name:     "png disguised as pdf is rejected",
			data:     pngBytes,
			fileName: "resume.pdf",
			wantErr:  ErrUnsupportedFileType,
		},
		{
			name:     "unknown binary with unknown extension is rejected",
			data:     []byte{0x00, 0x01, 0x02, 0x03, 0x04},
			fileName: "payload.bin",
			wantErr:  ErrUnsupportedFileType,
		},
		{
			name:     "zip container with non-document extension is rejected",
			data:     append([]byte{'P', 'K', 0x03, 0x04}, bytes.Repeat([]byte{0}, 32)...),
			fileName: "archive.zip",
			wantErr:  ErrUnsupportedFileType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveMimeType(tt.data, tt.fileName)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestBuildStorageKey(t *testing.T) {
	key1 := buildStorageKey("candidate", "cand-1", "my resume (final).pdf")
	key2 := buildStorageKey("candidate", "cand-1", "my resume (final).pdf")

	assert.True(t, len(key1) > 0)
	assert.NotEqual(t, key1, key2, "identical uploads must get distinct keys")
	assert.Contains(t, key1, "candidate/cand-1/")
	// everything outside [A-Za-z0-9.-] in the filename becomes "_"
	assert.Contains(t, key1, "my_resume__final_.pdf")
	assert.NotContains(t, key1, " ")
}
