package filecodec

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// File is an attached file handle. Open may be called more than once; each
// call yields a fresh reader over the whole content.
type File interface {
	Name() string
	MIMEType() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// Bytes is an in-memory File, used for browser uploads.
type Bytes struct {
	name     string
	mimeType string
	data     []byte
}

// NewBytes wraps data. An empty mimeType is resolved from the name's
// extension and then from the content itself.
func NewBytes(name, mimeType string, data []byte) *Bytes {
	if strings.TrimSpace(mimeType) == "" || mimeType == "application/octet-stream" {
		mimeType = detectMIMEType(name, data)
	}
	return &Bytes{name: name, mimeType: mimeType, data: data}
}

func (b *Bytes) Name() string     { return b.name }
func (b *Bytes) MIMEType() string { return b.mimeType }
func (b *Bytes) Size() int64      { return int64(len(b.data)) }

func (b *Bytes) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

// OnDisk is a File backed by a path, used by the terminal shell and the ask
// command. Content is read lazily on Open.
type OnDisk struct {
	path     string
	mimeType string
	size     int64
}

// NewOnDisk stats path and resolves its MIME type. It does not keep the file
// open.
func NewOnDisk(path string) (*OnDisk, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &ReadError{Name: filepath.Base(path), Err: err}
	}
	mt := mime.TypeByExtension(filepath.Ext(path))
	if mt == "" {
		mt = sniffPath(path)
	}
	return &OnDisk{path: path, mimeType: mt, size: info.Size()}, nil
}

func (d *OnDisk) Name() string     { return filepath.Base(d.path) }
func (d *OnDisk) MIMEType() string { return d.mimeType }
func (d *OnDisk) Size() int64      { return d.size }
func (d *OnDisk) Path() string     { return d.path }

func (d *OnDisk) Open() (io.ReadCloser, error) {
	return os.Open(d.path)
}

func detectMIMEType(name string, data []byte) string {
	if mt := mime.TypeByExtension(filepath.Ext(name)); mt != "" {
		return mt
	}
	return http.DetectContentType(data)
}

func sniffPath(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return "application/octet-stream"
	}
	defer f.Close()
	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	return http.DetectContentType(head[:n])
}
