package filecodec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadError reports that a file could not be read or decoded.
type ReadError struct {
	Name string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("filecodec: read %q: %v", e.Name, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ReadAll reads the whole content of f.
func ReadAll(f File) ([]byte, error) {
	if f == nil {
		return nil, &ReadError{Err: errors.New("no file")}
	}
	rc, err := f.Open()
	if err != nil {
		return nil, &ReadError{Name: f.Name(), Err: err}
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, &ReadError{Name: f.Name(), Err: err}
	}
	return data, nil
}

// EncodeToBase64 returns the standard base64 encoding of the whole file.
func EncodeToBase64(f File) (string, error) {
	data, err := ReadAll(f)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeAsText reads the whole file and decodes it as text. The charset
// parameter of the file's MIME type picks the decoder; UTF-8 is assumed
// otherwise. Invalid sequences become U+FFFD.
func DecodeAsText(f File) (string, error) {
	data, err := ReadAll(f)
	if err != nil {
		return "", err
	}
	charset := charsetOf(f.MIMEType())
	if charset == "" || isUTF8Label(charset) {
		data = bytes.TrimPrefix(data, utf8BOM)
		return strings.ToValidUTF8(string(data), "\uFFFD"), nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", &ReadError{Name: f.Name(), Err: fmt.Errorf("unsupported charset %q: %w", charset, err)}
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", &ReadError{Name: f.Name(), Err: err}
	}
	return string(out), nil
}

func charsetOf(mimeType string) string {
	if strings.TrimSpace(mimeType) == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["charset"])
}

func isUTF8Label(label string) bool {
	switch strings.ToLower(label) {
	case "utf-8", "utf8", "unicode-1-1-utf-8":
		return true
	}
	return false
}
