package filesystem

import (
	"context"
	"io/fs"
	"os"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"

	"github.com/GriffinCanCode/hostagent/internal/shared/errs"
)

// DirSize sums the sizes of the regular files below path. Entries that
// cannot be read are skipped; symlinks are not followed.
func (o *Ops) DirSize(ctx context.Context, path string) (DirUsage, error) {
	if err := requirePath("size", "path", path); err != nil {
		return DirUsage{}, err
	}

	full := o.Resolve(path)
	info, err := os.Lstat(full)
	if err != nil {
		return DirUsage{}, errs.FromIO("stat", full, err)
	}
	if !info.IsDir() {
		usage := DirUsage{Path: path}
		if info.Mode().IsRegular() {
			usage.Bytes = info.Size()
			usage.Files = 1
		}
		return usage, nil
	}

	var total, files atomic.Int64
	conf := fastwalk.Config{Follow: false}

	// The walk callback runs on several goroutines
	err = fastwalk.Walk(&conf, full, func(p string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		total.Add(info.Size())
		files.Add(1)
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return DirUsage{}, ctxErr
		}
		return DirUsage{}, errs.FromIO("walk", full, err)
	}

	return DirUsage{Path: path, Bytes: total.Load(), Files: files.Load()}, nil
}
