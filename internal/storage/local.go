// Package storage writes comment attachments to the local upload directory.
package storage

import (
	"context"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// URLPrefix is the route the upload directory is served under
const URLPrefix = "/uploads"

// Local stores files beneath dir and names them by random UUID
type Local struct {
	dir string
}

// NewLocal creates the storage rooted at dir
func NewLocal(dir string) *Local {
	return &Local{dir: dir}
}

// Dir returns the root directory
func (l *Local) Dir() string {
	return l.dir
}

// Save copies fh into <dir>/<folder>/<uuid><ext> and returns its public URL.
// The extension comes from the sniffed content, not the client file name.
func (l *Local) Save(ctx context.Context, folder string, fh *multipart.FileHeader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", errors.Wrap(err, "open upload")
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", errors.Wrap(err, "detect upload type")
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", errors.Wrap(err, "rewind upload")
	}

	target := filepath.Join(l.dir, folder)
	if err := os.MkdirAll(target, 0755); err != nil {
		return "", errors.Wrap(err, "create upload directory")
	}

	name := uuid.NewString() + mtype.Extension()
	if err := writeFile(filepath.Join(target, name), src); err != nil {
		return "", err
	}

	return path.Join(URLPrefix, folder, name), nil
}

// writeFile copies src to a new file at name. A partially written file is removed.
func writeFile(name string, src io.Reader) error {
	dst, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "create upload file")
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(name)
		return errors.Wrap(err, "write upload file")
	}
	if err := dst.Close(); err != nil {
		os.Remove(name)
		return errors.Wrap(err, "close upload file")
	}
	return nil
}

// Remove deletes the file behind a URL returned by Save. Missing files are not an error.
func (l *Local) Remove(_ context.Context, url string) error {
	rel := strings.TrimPrefix(url, URLPrefix+"/")
	if rel == url || strings.Contains(rel, "..") {
		return errors.Errorf("not an upload url: %s", url)
	}

	err := os.Remove(filepath.Join(l.dir, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove upload file")
	}
	return nil
}
