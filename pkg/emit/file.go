// SPDX-License-Identifier: AGPL-3.0-only

package emit

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// FileEmitter writes documents into a directory. Existing files are replaced
// atomically: readers see either the previous or the new document.
type FileEmitter struct {
	fs     afero.Fs
	dir    string
	logger log.Logger
}

func NewFileEmitter(fs afero.Fs, dir string, logger log.Logger) *FileEmitter {
	return &FileEmitter{fs: fs, dir: dir, logger: logger}
}

// Path returns where doc is written.
func (e *FileEmitter) Path(doc Document) string {
	return filepath.Join(e.dir, doc.FileName)
}

func (e *FileEmitter) Emit(ctx context.Context, doc Document) error {
	path := e.Path(doc)
	if err := ctx.Err(); err != nil {
		return &IOError{Path: path, Err: err}
	}
	if doc.FileName == "" || filepath.Base(doc.FileName) != doc.FileName {
		return &IOError{Path: path, Err: errors.Errorf("invalid file name %q", doc.FileName)}
	}

	if err := e.write(path, doc.Body); err != nil {
		return &IOError{Path: path, Err: err}
	}

	level.Info(e.logger).Log("msg", "wrote dashboard", "dashboard", doc.Name, "path", path, "size", humanize.Bytes(uint64(len(doc.Body))))
	return nil
}

func (e *FileEmitter) write(path string, body []byte) (err error) {
	dir := filepath.Dir(path)
	if err := e.fs.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	tmp, err := afero.TempFile(e.fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "creating temporary file")
	}
	defer func() {
		if err != nil {
			_ = e.fs.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing temporary file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "syncing temporary file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temporary file")
	}
	if err := e.fs.Chmod(tmp.Name(), os.FileMode(0o644)); err != nil {
		return errors.Wrap(err, "setting file mode")
	}
	if err := e.fs.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "replacing destination")
	}
	return nil
}
