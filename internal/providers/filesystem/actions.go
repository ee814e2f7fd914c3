package filesystem

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"syscall"

	"github.com/GriffinCanCode/hostagent/internal/shared/errs"
)

// Engine performs idempotent file system mutations. Each action first checks
// whether its goal state already holds and, if so, succeeds without touching
// anything.
type Engine struct {
	*Ops
}

// Perform dispatches req to the primitive named by action
func (e *Engine) Perform(action Action, req ActionRequest) (ActionOutcome, error) {
	switch action {
	case ActionCreate:
		return e.CreateFile(req.Source)
	case ActionMkdir:
		return e.MakeDirectory(req.Source)
	case ActionDelete:
		return e.DeleteFile(req.Source)
	case ActionCopy:
		return e.CopyFile(req.Source, req.Destination)
	case ActionMove:
		return e.MoveFile(req.Source, req.Destination)
	default:
		return ActionOutcome{Action: action}, errs.Newf(errs.KindInvalidArgument, "perform", "", "unknown action: %q", action)
	}
}

// CreateFile creates an empty file unless something already exists at path
func (e *Engine) CreateFile(path string) (ActionOutcome, error) {
	return e.run(ActionCreate, path, "", func(src, _ string) error {
		if err := absent("create", src); err != nil {
			return err
		}
		f, err := os.OpenFile(src, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			return satisfied("create", src)
		}
		if err != nil {
			return errs.FromIO("create", src, err)
		}
		return errs.FromIO("close", src, f.Close())
	})
}

// MakeDirectory creates a single directory level unless path exists.
// Missing parents are not created.
func (e *Engine) MakeDirectory(path string) (ActionOutcome, error) {
	return e.run(ActionMkdir, path, "", func(src, _ string) error {
		if err := absent("mkdir", src); err != nil {
			return err
		}
		err := os.Mkdir(src, 0o755)
		if errors.Is(err, fs.ErrExist) {
			return satisfied("mkdir", src)
		}
		return errs.FromIO("mkdir", src, err)
	})
}

// DeleteFile removes the file at path. A path that does not exist is
// already deleted. Directories are refused.
func (e *Engine) DeleteFile(path string) (ActionOutcome, error) {
	return e.run(ActionDelete, path, "", func(src, _ string) error {
		info, err := os.Lstat(src)
		if errors.Is(err, fs.ErrNotExist) {
			return satisfied("delete", src)
		}
		if err != nil {
			return errs.FromIO("delete", src, err)
		}
		if info.IsDir() {
			return errs.New(errs.KindOther, "delete", src, syscall.EISDIR)
		}

		err = os.Remove(src)
		if errors.Is(err, fs.ErrNotExist) {
			return satisfied("delete", src)
		}
		return errs.FromIO("delete", src, err)
	})
}

// CopyFile copies src to dst byte for byte unless dst is already a regular
// file. A partially written destination is removed on failure.
func (e *Engine) CopyFile(src, dst string) (ActionOutcome, error) {
	return e.run(ActionCopy, src, dst, func(src, dst string) error {
		info, err := os.Stat(dst)
		if err == nil {
			if info.Mode().IsRegular() {
				return satisfied("copy", dst)
			}
			return errs.Newf(errs.KindOther, "copy", dst, "destination exists and is not a regular file")
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return errs.FromIO("copy", dst, err)
		}
		return copyContents(src, dst)
	})
}

// MoveFile renames src to dst unless dst exists. Renames across file
// systems fail with EXDEV; no copy fallback is attempted.
func (e *Engine) MoveFile(src, dst string) (ActionOutcome, error) {
	return e.run(ActionMove, src, dst, func(src, dst string) error {
		if err := absent("move", dst); err != nil {
			return err
		}
		return errs.FromIO("rename", src, os.Rename(src, dst))
	})
}

// run validates arguments, resolves paths and turns the already-satisfied
// signal into an unchanged outcome
func (e *Engine) run(action Action, src, dst string, op func(src, dst string) error) (ActionOutcome, error) {
	outcome := ActionOutcome{Action: action, Source: src, Destination: dst}

	if err := requirePath(string(action), "path", src); err != nil {
		return outcome, err
	}
	resolvedDst := ""
	if action.NeedsDestination() {
		if err := requirePath(string(action), "dest", dst); err != nil {
			return outcome, err
		}
		resolvedDst = e.Resolve(dst)
	}

	err := op(e.Resolve(src), resolvedDst)
	switch {
	case err == nil:
		outcome.Changed = true
	case errors.Is(err, errs.ErrAlreadySatisfied):
	default:
		return outcome, err
	}
	return outcome, nil
}

func satisfied(op, path string) error {
	return errs.New(errs.KindAlreadySatisfied, op, path, nil)
}

// absent returns the already-satisfied signal when path exists
func absent(op, path string) error {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return satisfied(op, path)
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return errs.FromIO(op, path, err)
	}
}

func copyContents(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return errs.FromIO("open", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errs.FromIO("stat", src, err)
	}
	if info.IsDir() {
		return errs.New(errs.KindOther, "copy", src, syscall.EISDIR)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if errors.Is(err, fs.ErrExist) {
		// Stat saw nothing, so dst is a dangling symlink or appeared since.
		if existing, lerr := os.Lstat(dst); lerr == nil && existing.Mode().IsRegular() {
			return satisfied("copy", dst)
		}
		return errs.Newf(errs.KindOther, "copy", dst, "destination exists and is not a regular file")
	}
	if err != nil {
		return errs.FromIO("create", dst, err)
	}
	defer func() {
		if err != nil {
			os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return errs.FromIO("copy", dst, fmt.Errorf("%s -> %s: %w", src, dst, err))
	}
	if err = out.Chmod(info.Mode().Perm()); err != nil {
		out.Close()
		return errs.FromIO("chmod", dst, err)
	}
	if err = out.Close(); err != nil {
		return errs.FromIO("close", dst, err)
	}
	return nil
}
