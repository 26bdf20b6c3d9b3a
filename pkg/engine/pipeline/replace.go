package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sourcebridge/sourcebridge/pkg/engine/glob"
	"github.com/sourcebridge/sourcebridge/pkg/engine/pathsafe"
)

// Replace finds Before (a regex, with named groups bound to sub-regexes)
// in each file matching Paths, and substitutes After. A Replace that
// matches nothing in every file is a no-op (spec.md §4.2 Replace).
type Replace struct {
	Before     string
	After      string
	Paths      *glob.Glob
	Multiline  bool
	FirstOnly  bool
	GroupRegex map[string]string // named-group sub-patterns, e.g. {"x": "[0-9]+"}
}

func (r *Replace) Describe() string {
	return fmt.Sprintf("replace %q -> %q", r.Before, r.After)
}

func (r *Replace) compile() (*regexp.Regexp, error) {
	pattern := r.Before
	for name, sub := range r.GroupRegex {
		placeholder := "${" + name + "}"
		pattern = strings.ReplaceAll(pattern, placeholder, fmt.Sprintf("(?P<%s>%s)", name, sub))
	}
	flags := ""
	if r.Multiline {
		flags = "(?m)"
	}
	return regexp.Compile(flags + pattern)
}

func (r *Replace) paths() *glob.Glob {
	if r.Paths != nil {
		return r.Paths
	}
	return glob.All()
}

func (r *Replace) Apply(ctx *Context) (Result, error) {
	re, err := r.compile()
	if err != nil {
		return Result{}, err
	}
	changed := false
	err = walkFiles(ctx.Work.CheckoutDir, r.paths(), func(relPath, absPath string) error {
		data, err := os.ReadFile(absPath)
		if err != nil {
			return err
		}
		content := string(data)
		var replaced string
		if r.FirstOnly {
			loc := re.FindStringIndex(content)
			if loc == nil {
				return nil
			}
			replaced = content[:loc[0]] + re.ReplaceAllString(content[loc[0]:loc[1]], r.After) + content[loc[1]:]
		} else {
			if !re.MatchString(content) {
				return nil
			}
			replaced = re.ReplaceAllString(content, r.After)
		}
		if replaced == content {
			return nil
		}
		changed = true
		return os.WriteFile(absPath, []byte(replaced), filePerm(absPath))
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Changed: changed}, nil
}

// Reverse swaps Before/After; only valid when both share the same named
// groups, so the swap is compatible in both directions (spec.md §4.2: "a
// replace is reversible exactly when before <-> after are swap-compatible
// (same group set)").
func (r *Replace) Reverse() (Transformation, error) {
	beforeGroups := groupNames(r.Before)
	afterGroups := groupNames(r.After)
	if !sameSet(beforeGroups, afterGroups) {
		return nil, notReversible(r)
	}
	return &Replace{Before: r.After, After: r.Before, Paths: r.Paths, Multiline: r.Multiline, FirstOnly: r.FirstOnly, GroupRegex: r.GroupRegex}, nil
}

var groupRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func groupNames(pattern string) map[string]bool {
	out := map[string]bool{}
	for _, m := range groupRefPattern.FindAllStringSubmatch(pattern, -1) {
		out[m[1]] = true
	}
	return out
}

func sameSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

func filePerm(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil {
		return info.Mode()
	}
	return 0o644
}

// walkFiles invokes fn for every regular file under root whose path
// (relative to root, "/"-separated) matches g. Path resolution is
// confined to root (spec.md §4.2 Path safety).
func walkFiles(root string, g *glob.Glob, fn func(relPath, absPath string) error) error {
	return filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !g.Matches(rel) {
			return nil
		}
		resolved, err := pathsafe.Resolve(root, rel)
		if err != nil {
			return err
		}
		return fn(rel, resolved)
	})
}
