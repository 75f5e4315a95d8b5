package util

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrFileType = errors.New("file type not allowed")

var (
	// CVExtensions are accepted for application attachments
	CVExtensions = []string{".pdf", ".doc", ".docx"}
	// ImageExtensions are accepted for homepage and about images
	ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
)

// UploadName returns a collision-free stored name for an uploaded file, keeping
// its extension. The original name never reaches the file system.
func UploadName(prefix, original string, allowed []string) (string, error) {
	ext := strings.ToLower(filepath.Ext(original))
	ok := false
	for _, a := range allowed {
		if ext == a {
			ok = true
			break
		}
	}
	if !ok {
		return "", ErrFileType
	}
	return prefix + "_" + uuid.NewString() + ext, nil
}

// SafeUploadPath joins name onto dir, rejecting anything that would leave dir
func SafeUploadPath(dir, name string) (string, bool) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", false
	}
	return filepath.Join(dir, name), true
}
