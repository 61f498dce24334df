package upload

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// buildFileName returns a collision-resistant name keeping the lower-cased
// extension of original.
func buildFileName(original string) string {
	return "image-" + strings.ReplaceAll(uuid.NewString(), "-", "") + extOf(original)
}

func extOf(name string) string {
	return strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
}

// validateFile checks the extension against allowed and the size against max.
func validateFile(filename string, size int64, allowed []string, maxBytes int64) error {
	ext := strings.TrimPrefix(extOf(filename), ".")
	if ext == "" {
		return fmt.Errorf("File must have an extension")
	}
	if maxBytes > 0 && size > maxBytes {
		return fmt.Errorf("File cannot be larger than %dMB", maxBytes/(1024*1024))
	}
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimPrefix(strings.TrimSpace(a), "."), ext) {
			return nil
		}
	}
	return fmt.Errorf("Only %s files are allowed", strings.Join(allowed, ", "))
}

// detectContentType prefers the extension, then the payload sniff.
func detectContentType(filename string, head []byte) string {
	if ct := mime.TypeByExtension(extOf(filename)); ct != "" {
		return ct
	}
	if len(head) > 0 {
		return http.DetectContentType(head)
	}
	return "application/octet-stream"
}
