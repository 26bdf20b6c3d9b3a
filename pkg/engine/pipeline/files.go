package pipeline

import (
	"os"
	"path/filepath"

	"github.com/sourcebridge/sourcebridge/pkg/engine/glob"
	"github.com/sourcebridge/sourcebridge/pkg/engine/pathsafe"
)

// Extractor decompresses an archive into destDir. Archive codecs
// (zip/tar/xz/gz) are an out-of-scope opaque capability (spec.md §1); the
// core only orchestrates calling one.
type Extractor func(archivePath, destDir string) error

// ArchiveExtract extracts ArchivePath (relative to the checkout) into Dest
// using Extractor, then optionally removes the archive itself.
type ArchiveExtract struct {
	ArchivePath  string
	Dest         string
	Extractor    Extractor
	RemoveSource bool
}

func (t *ArchiveExtract) Describe() string { return "extract(" + t.ArchivePath + ")" }
func (t *ArchiveExtract) Apply(ctx *Context) (Result, error) {
	archiveAbs, err := pathsafe.Resolve(ctx.Work.CheckoutDir, t.ArchivePath)
	if err != nil {
		return Result{}, err
	}
	destAbs, err := pathsafe.ResolveNew(ctx.Work.CheckoutDir, t.Dest)
	if err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(destAbs, 0o755); err != nil {
		return Result{}, err
	}
	if err := t.Extractor(archiveAbs, destAbs); err != nil {
		return Result{}, err
	}
	if t.RemoveSource {
		_ = os.Remove(archiveAbs)
	}
	return Result{Changed: true}, nil
}

// SymlinkCreate creates a symlink at LinkPath pointing at Target, both
// resolved within the checkout; a target outside the checkout is rejected
// (spec.md §4.2 Path safety: "create_symlink refuses targets outside the
// checkout").
type SymlinkCreate struct {
	LinkPath string
	Target   string
}

func (t *SymlinkCreate) Describe() string { return "create_symlink(" + t.LinkPath + ")" }
func (t *SymlinkCreate) Apply(ctx *Context) (Result, error) {
	if _, err := pathsafe.Resolve(ctx.Work.CheckoutDir, t.Target); err != nil {
		return Result{}, err
	}
	linkAbs, err := pathsafe.ResolveNew(ctx.Work.CheckoutDir, t.LinkPath)
	if err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(filepath.Dir(linkAbs), 0o755); err != nil {
		return Result{}, err
	}
	targetAbs := filepath.Join(ctx.Work.CheckoutDir, t.Target)
	relTarget, err := filepath.Rel(filepath.Dir(linkAbs), targetAbs)
	if err != nil {
		relTarget = targetAbs
	}
	if err := os.Symlink(relTarget, linkAbs); err != nil {
		return Result{}, err
	}
	return Result{Changed: true}, nil
}

func (t *SymlinkCreate) Reverse() (Transformation, error) {
	return &removeFile{path: t.LinkPath}, nil
}

type removeFile struct{ path string }

func (r *removeFile) Describe() string { return "remove(" + r.path + ")" }
func (r *removeFile) Apply(ctx *Context) (Result, error) {
	abs, err := pathsafe.Resolve(ctx.Work.CheckoutDir, r.path)
	if err != nil {
		return Result{}, err
	}
	if err := os.Remove(abs); err != nil {
		if os.IsNotExist(err) {
			return Result{Changed: false}, nil
		}
		return Result{}, err
	}
	return Result{Changed: true}, nil
}

// SetExecutable chmods every file matching Paths to mode 0755 (or 0644
// when Executable is false).
type SetExecutable struct {
	Paths      *glob.Glob
	Executable bool
}

func (t *SetExecutable) Describe() string { return "set_executable" }
func (t *SetExecutable) Apply(ctx *Context) (Result, error) {
	changed := false
	mode := os.FileMode(0o644)
	if t.Executable {
		mode = 0o755
	}
	err := walkFiles(ctx.Work.CheckoutDir, t.Paths, func(relPath, absPath string) error {
		info, err := os.Stat(absPath)
		if err != nil {
			return err
		}
		if info.Mode().Perm() == mode {
			return nil
		}
		changed = true
		return os.Chmod(absPath, mode)
	})
	return Result{Changed: changed}, err
}

func (t *SetExecutable) Reverse() (Transformation, error) {
	return &SetExecutable{Paths: t.Paths, Executable: !t.Executable}, nil
}
