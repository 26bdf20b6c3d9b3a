// Package diff implements the unified-diff representation shared by
// PatchApply transformations, AutoPatch generation, and the
// ConsistencyFile's reverse-apply step (spec.md §3 AutoPatch, §4.2
// PatchApply, §4.3 ConsistencyFile).
package diff

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// LineOp is the operation a unified-diff line performs.
type LineOp byte

const (
	Context LineOp = ' '
	Add     LineOp = '+'
	Del     LineOp = '-'
)

// Line is one line of a hunk body.
type Line struct {
	Op   LineOp
	Text string
}

// Hunk is one "@@ -oldStart,oldLines +newStart,newLines @@" block.
type Hunk struct {
	OldStart, OldLines int
	NewStart, NewLines int
	Lines              []Line
}

// FilePatch is every hunk for one path, or a binary marker.
type FilePatch struct {
	Path    string
	OldPath string
	Binary  bool
	Hunks   []Hunk
}

// Patch is a collection of per-file patches, in file order.
type Patch struct {
	Files []FilePatch
}

// Filter returns a Patch containing only the files for which keep(path)
// is true (used by PatchApply.ExcludedPaths and merge-import path
// narrowing).
func (p Patch) Filter(keep func(path string) bool) Patch {
	out := Patch{}
	for _, f := range p.Files {
		if keep(f.Path) {
			out.Files = append(out.Files, f)
		}
	}
	return out
}

// Negate swaps the add/delete direction of every hunk and the old/new
// paths, producing the patch that undoes p (spec.md §4.2 PatchApply
// "reverse applies the negated diff").
func (p Patch) Negate() Patch {
	out := Patch{Files: make([]FilePatch, len(p.Files))}
	for i, f := range p.Files {
		nf := FilePatch{Path: f.OldPath, OldPath: f.Path, Binary: f.Binary}
		if nf.Path == "" {
			nf.Path = f.Path
		}
		for _, h := range f.Hunks {
			nh := Hunk{OldStart: h.NewStart, OldLines: h.NewLines, NewStart: h.OldStart, NewLines: h.OldLines}
			for _, l := range h.Lines {
				switch l.Op {
				case Add:
					nh.Lines = append(nh.Lines, Line{Op: Del, Text: l.Text})
				case Del:
					nh.Lines = append(nh.Lines, Line{Op: Add, Text: l.Text})
				default:
					nh.Lines = append(nh.Lines, l)
				}
			}
			nf.Hunks = append(nf.Hunks, nh)
		}
		out.Files[i] = nf
	}
	return out
}

// String renders the patch as unified diff text.
func (p Patch) String() string {
	var b strings.Builder
	for _, f := range p.Files {
		oldPath := f.OldPath
		if oldPath == "" {
			oldPath = f.Path
		}
		fmt.Fprintf(&b, "--- a/%s\n", oldPath)
		fmt.Fprintf(&b, "+++ b/%s\n", f.Path)
		if f.Binary {
			b.WriteString("Binary files differ\n")
			continue
		}
		for _, h := range f.Hunks {
			fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
			for _, l := range h.Lines {
				b.WriteByte(byte(l.Op))
				b.WriteString(l.Text)
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

var hunkHeader = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Parse reads unified diff text produced by String or a compatible
// external tool.
func Parse(text string) (Patch, error) {
	var p Patch
	scanner := bufio.NewScanner(bytes.NewBufferString(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	var cur *FilePatch
	var curHunk *Hunk

	flushHunk := func() {
		if cur != nil && curHunk != nil {
			cur.Hunks = append(cur.Hunks, *curHunk)
			curHunk = nil
		}
	}
	flushFile := func() {
		flushHunk()
		if cur != nil {
			p.Files = append(p.Files, *cur)
			cur = nil
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "--- "):
			flushFile()
			cur = &FilePatch{OldPath: stripDiffPrefix(line[4:])}
		case strings.HasPrefix(line, "+++ "):
			if cur == nil {
				cur = &FilePatch{}
			}
			cur.Path = stripDiffPrefix(line[4:])
		case strings.HasPrefix(line, "Binary files"):
			if cur != nil {
				cur.Binary = true
			}
		case strings.HasPrefix(line, "@@"):
			flushHunk()
			m := hunkHeader.FindStringSubmatch(line)
			if m == nil {
				return Patch{}, fmt.Errorf("diff: malformed hunk header %q", line)
			}
			curHunk = &Hunk{
				OldStart: atoiDefault(m[1], 0),
				OldLines: atoiDefault(m[2], 1),
				NewStart: atoiDefault(m[3], 0),
				NewLines: atoiDefault(m[4], 1),
			}
		case curHunk != nil && len(line) > 0:
			curHunk.Lines = append(curHunk.Lines, Line{Op: LineOp(line[0]), Text: line[1:]})
		case curHunk != nil:
			curHunk.Lines = append(curHunk.Lines, Line{Op: Context, Text: ""})
		}
	}
	flushFile()
	if err := scanner.Err(); err != nil {
		return Patch{}, err
	}
	return p, nil
}

func stripDiffPrefix(p string) string {
	p = strings.TrimSpace(p)
	if i := strings.IndexByte(p, '\t'); i >= 0 {
		p = p[:i]
	}
	if strings.HasPrefix(p, "a/") || strings.HasPrefix(p, "b/") {
		return p[2:]
	}
	return p
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
