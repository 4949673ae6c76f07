package storage

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// GenerateKey generates a new storage key of the form {section}/{uuid}{ext}.
// The section is reduced to a safe path segment.
func GenerateKey(section, extension string) string {
	if extension != "" && extension[0] != '.' {
		extension = "." + extension
	}
	return sanitizeSegment(section) + "/" + uuid.New().String() + extension
}

// InferExtension picks a file extension for the stored payload.
// The MIME type wins over the original file name, since converted
// images no longer match their upload name.
func InferExtension(mimeType, filename string) string {
	if m := mimetype.Lookup(mimeType); m != nil && m.Extension() != "" {
		return m.Extension()
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// IsGeneratedKey reports whether key has the {section}/{uuid}{ext} shape
// GenerateKey produces. Anything else in a bucket or upload directory
// belongs to someone else and must be left alone.
func IsGeneratedKey(key string) bool {
	section, name, ok := strings.Cut(key, "/")
	if !ok || section == "" || strings.Contains(name, "/") {
		return false
	}
	for _, r := range section {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' && r != '_' {
			return false
		}
	}

	const uuidLen = 36
	if len(name) < uuidLen {
		return false
	}
	id, err := uuid.Parse(name[:uuidLen])
	if err != nil || id.String() != name[:uuidLen] {
		return false
	}

	ext := name[uuidLen:]
	if ext == "" {
		return true
	}
	if ext[0] != '.' || len(ext) < 2 || len(ext) > 10 {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// sanitizeSegment keeps lowercase letters, digits, '-' and '_'
func sanitizeSegment(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "misc"
	}
	return b.String()
}
