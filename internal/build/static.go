package build

import (
	"io"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/pressbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pressbuilder/internal/logfields"
	"git.home.luguber.info/inful/pressbuilder/internal/observability"
	"git.home.luguber.info/inful/pressbuilder/internal/scan"
)

// copyStatic copies static entries to the same relative path under the
// destination, keeping file modes.
func (r *run) copyStatic(entries []scan.Entry) error {
	for _, e := range entries {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		target := filepath.Join(r.dest, filepath.FromSlash(e.RelPath))
		if err := copyFile(e.Path, target); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to copy static file").
				WithContext("source", e.RelPath).
				WithContext("destination", target).Build()
		}
		r.site.StaticFiles = append(r.site.StaticFiles, "/"+e.RelPath)
		r.written++
		observability.DebugContext(r.ctx, "Copied static file", logfields.Path(e.RelPath))
	}
	return nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	// OpenFile only applies the mode on create; overwrites keep the old one.
	return os.Chmod(dst, info.Mode().Perm())
}
