package export

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/KaramelBytes/bundlesheet-cli/internal/utils"
)

// Deliverer hands a finished workbook to its destination.
type Deliverer interface {
	Deliver(ctx context.Context, name string, data []byte) error
}

// DirDeliverer writes workbooks into a directory. Files are written to a
// temporary name and renamed into place, so a failed write never leaves a
// partial workbook under the final name.
type DirDeliverer struct {
	Dir string
	// Prefix is prepended to the file name (used by batch exports).
	Prefix string

	lastPath string
}

// Deliver implements Deliverer.
func (d *DirDeliverer) Deliver(_ context.Context, name string, data []byte) error {
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := utils.EnsureDir(dir); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, d.Prefix+name)
	if err := utils.SafeWriteFile(path, data); err != nil {
		return err
	}
	d.lastPath = path
	return nil
}

// Path returns where the last successful delivery was written.
func (d *DirDeliverer) Path() string { return d.lastPath }

// WriterDeliverer streams the workbook to any writer (stdout, HTTP response).
type WriterDeliverer struct {
	W io.Writer
}

// Deliver implements Deliverer.
func (d WriterDeliverer) Deliver(_ context.Context, _ string, data []byte) error {
	if _, err := d.W.Write(data); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// DeliverFunc adapts a function to Deliverer.
type DeliverFunc func(ctx context.Context, name string, data []byte) error

// Deliver implements Deliverer.
func (f DeliverFunc) Deliver(ctx context.Context, name string, data []byte) error {
	return f(ctx, name, data)
}
