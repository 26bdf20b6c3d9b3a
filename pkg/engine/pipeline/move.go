package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sourcebridge/sourcebridge/pkg/engine/glob"
	"github.com/sourcebridge/sourcebridge/pkg/engine/pathsafe"
)

// Move renames paths matching From to To within the checkout. It is its
// own inverse given the inverse path mapping (spec.md §4.2 Move/Copy).
type Move struct {
	From *glob.Glob
	To   func(relPath string) string
	desc string
}

func NewMove(desc string, from *glob.Glob, to func(string) string) *Move {
	return &Move{From: from, To: to, desc: desc}
}

func (m *Move) Describe() string {
	if m.desc != "" {
		return m.desc
	}
	return "move"
}

func (m *Move) Apply(ctx *Context) (Result, error) {
	changed := false
	var toMove []string
	err := walkFiles(ctx.Work.CheckoutDir, m.From, func(relPath, absPath string) error {
		toMove = append(toMove, relPath)
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	for _, rel := range toMove {
		dest := m.To(rel)
		if dest == rel {
			continue
		}
		srcAbs, err := pathsafe.Resolve(ctx.Work.CheckoutDir, rel)
		if err != nil {
			return Result{}, err
		}
		dstAbs, err := pathsafe.ResolveNew(ctx.Work.CheckoutDir, dest)
		if err != nil {
			return Result{}, err
		}
		if err := os.MkdirAll(filepath.Dir(dstAbs), 0o755); err != nil {
			return Result{}, err
		}
		if err := os.Rename(srcAbs, dstAbs); err != nil {
			return Result{}, fmt.Errorf("move %s -> %s: %w", rel, dest, err)
		}
		changed = true
	}
	return Result{Changed: changed}, nil
}

// ReverseWith returns a Move using the inverse path mapping, which the caller
// must supply since To is an arbitrary function (spec.md §4.2: "Move is
// its own inverse given the inverse path mapping").
func (m *Move) ReverseWith(inverse func(string) string) *Move {
	return &Move{From: m.From, To: inverse, desc: "reverse(" + m.Describe() + ")"}
}

// Copy duplicates paths matching From to destinations produced by To,
// leaving the originals in place. Copy has no general inverse (the
// duplicate would have to be deleted, which Copy itself cannot express),
// so it does not implement Reversible.
type Copy struct {
	From *glob.Glob
	To   func(relPath string) string
	desc string
}

func NewCopy(desc string, from *glob.Glob, to func(string) string) *Copy {
	return &Copy{From: from, To: to, desc: desc}
}

func (c *Copy) Describe() string {
	if c.desc != "" {
		return c.desc
	}
	return "copy"
}

func (c *Copy) Apply(ctx *Context) (Result, error) {
	changed := false
	err := walkFiles(ctx.Work.CheckoutDir, c.From, func(relPath, absPath string) error {
		dest := c.To(relPath)
		if dest == relPath {
			return nil
		}
		dstAbs, err := pathsafe.ResolveNew(ctx.Work.CheckoutDir, dest)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(dstAbs), 0o755); err != nil {
			return err
		}
		if err := copyFile(absPath, dstAbs); err != nil {
			return err
		}
		changed = true
		return nil
	})
	return Result{Changed: changed}, err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}
