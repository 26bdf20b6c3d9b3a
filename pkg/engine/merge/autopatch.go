package merge

import (
	"fmt"
	"path"
	"strings"

	"github.com/sourcebridge/sourcebridge/pkg/engine/diff"
	"github.com/sourcebridge/sourcebridge/pkg/engine/glob"
)

// AutoPatchConfig controls where and how per-file review patches are
// written after a merge (spec.md §4.4).
type AutoPatchConfig struct {
	DirectoryPrefix string
	Directory       string
	Suffix          string
	Header          string
	Paths           *glob.Glob

	// StripFileNamesAndLineNumbers replaces hunk headers with a generic
	// "@@ <context> @@" marker and drops the "--- a/..."/"+++ b/..." lines,
	// so unrelated line-number drift doesn't show up as diff noise.
	StripFileNamesAndLineNumbers bool
}

// GenerateAutoPatches compares origin (the pure transformed origin tree)
// against merged (the post-merge-import tree) and returns one patch file
// per differing path, keyed by its output path under
// <DirectoryPrefix>/<Directory>/<origin-path><Suffix>. Paths with no diff
// produce no entry (spec.md §4.4 "Empty diffs yield no patch file").
func GenerateAutoPatches(origin, merged map[string][]byte, cfg AutoPatchConfig) (map[string]string, error) {
	out := map[string]string{}

	paths := map[string]bool{}
	for p := range origin {
		paths[p] = true
	}
	for p := range merged {
		paths[p] = true
	}

	for p := range paths {
		if cfg.Paths != nil && !cfg.Paths.Matches(p) {
			continue
		}
		fp := diff.DiffFile(p, origin[p], merged[p], 3)
		if fp == nil {
			continue
		}

		var body string
		if cfg.StripFileNamesAndLineNumbers {
			body = renderStripped(*fp)
		} else {
			body = diff.Patch{Files: []diff.FilePatch{*fp}}.String()
		}

		var b strings.Builder
		if cfg.Header != "" {
			b.WriteString(cfg.Header)
			b.WriteString("\n")
		}
		b.WriteString(body)

		outPath := path.Join(cfg.DirectoryPrefix, cfg.Directory, p+cfg.Suffix)
		out[outPath] = b.String()
	}
	return out, nil
}

// renderStripped renders a FilePatch with generic hunk headers and no
// "--- a/"/"+++ b/" lines, for destination-tree-friendly review patches
// that don't churn on unrelated line-number shifts.
func renderStripped(fp diff.FilePatch) string {
	var b strings.Builder
	for _, h := range fp.Hunks {
		context := ""
		for _, l := range h.Lines {
			if l.Op == diff.Context {
				context = l.Text
				break
			}
		}
		fmt.Fprintf(&b, "@@ %s @@\n", context)
		for _, l := range h.Lines {
			b.WriteByte(byte(l.Op))
			b.WriteString(l.Text)
			b.WriteString("\n")
		}
	}
	return b.String()
}
