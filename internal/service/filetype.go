package service

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxFileSize is the fixed upload cap (10 MiB).
const MaxFileSize = 10 << 20

// allowedMimeTypes is the central allow-list. Whatever the detection chain
// resolves must land here or the upload is rejected.
var allowedMimeTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"text/plain":      {},
	"application/rtf": {},
	"text/rtf":        {},
}

// extensionMimeTypes backs the extension fallback when sniffing is
// inconclusive.
var extensionMimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
	".rtf":  "application/rtf",
}

// inconclusiveSniffs are container or fallback types where the magic bytes
// alone cannot name the document format (.doc is an OLE container, .docx is
// a zip); the extension decides for those.
var inconclusiveSniffs = map[string]struct{}{
	"application/octet-stream":  {},
	"application/zip":           {},
	"application/x-ole-storage": {},
}

// mimeDetector is one strategy in the resolution chain. It returns the
// resolved type and whether it reached a conclusive answer.
type mimeDetector func(data []byte, fileName string) (string, bool)

// detectionChain is evaluated in order: sniff the bytes, fall back to the
// filename extension, otherwise give up. The client-declared content type
// is never consulted.
var detectionChain = []mimeDetector{
	detectBySniffing,
	detectByExtension,
}

func detectBySniffing(data []byte, _ string) (string, bool) {
	mt := mimetype.Detect(data)
	resolved, _, _ := strings.Cut(mt.String(), ";")
	resolved = strings.TrimSpace(resolved)
	if _, ok := inconclusiveSniffs[resolved]; ok {
		return "", false
	}
	return resolved, true
}

func detectByExtension(_ []byte, fileName string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(fileName))
	mt, ok := extensionMimeTypes[ext]
	return mt, ok
}

// resolveMimeType runs the detection chain and enforces the allow-list.
func resolveMimeType(data []byte, fileName string) (string, error) {
	for _, detect := range detectionChain {
		mt, ok := detect(data, fileName)
		if !ok {
			continue
		}
		if _, allowed := allowedMimeTypes[mt]; !allowed {
			return "", ErrUnsupportedFileType
		}
		return mt, nil
	}
	return "", ErrUnsupportedFileType
}
