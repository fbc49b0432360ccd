package tui

import (
	"encoding/base64"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"genstudio/internal/studio"

	"github.com/dustin/go-humanize"
)

// saveImage writes an image result to a temporary file and returns its path.
func saveImage(r *studio.Result) (string, error) {
	data, err := base64.StdEncoding.DecodeString(r.Content)
	if err != nil {
		return "", err
	}
	ext := ".png"
	if exts, _ := mime.ExtensionsByType(r.MIMEType); len(exts) > 0 {
		ext = exts[0]
	}
	f, err := os.CreateTemp("", "genstudio-*"+ext)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return "", err
	}
	return f.Name(), nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func humanSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
