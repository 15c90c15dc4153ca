package excel

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
)

// DirDeliverer delivers artifacts by copying them into a destination folder.
// The destination id is the folder path.
type DirDeliverer struct{}

func NewDirDeliverer() DirDeliverer { return DirDeliverer{} }

func (DirDeliverer) Deliver(ctx context.Context, artifactPath, destinationID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(destinationID, 0o755); err != nil {
		return errors.Wrap(err, "create destination folder")
	}

	src, err := os.Open(artifactPath)
	if err != nil {
		return errors.Wrap(err, "open artifact")
	}
	defer func() { _ = src.Close() }()

	dstPath := filepath.Join(destinationID, filepath.Base(artifactPath))
	dst, err := os.Create(dstPath)
	if err != nil {
		return errors.Wrap(err, "create destination file")
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return errors.Wrap(err, "copy artifact")
	}
	return dst.Sync()
}
