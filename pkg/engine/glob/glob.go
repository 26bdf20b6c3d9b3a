// Package glob implements the path-matching predicate shared by every
// migration stage: origin/destination file filters, merge-import path
// narrowing, and autopatch path selection (spec.md §3 Glob).
package glob

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/sourcebridge/sourcebridge/pkg/logger"
)

var globLog = logger.New("engine:glob")

// Glob is an include/exclude path-matching predicate. The zero value
// matches nothing.
type Glob struct {
	includes []compiledPattern
	excludes []compiledPattern
}

type compiledPattern struct {
	raw string
	re  *regexp.Regexp
	// root is the shallowest fixed-path prefix of the pattern, used to
	// enumerate Roots() so callers can skip whole subtrees.
	root string
}

// New compiles a Glob from include and exclude pattern lists. Patterns use
// "/"-separated slash paths and "**" for arbitrary-depth matches, the same
// dialect as .gitignore-style gitignore/glob filters. Duplicate patterns
// are normalized out; a pattern containing ".." is rejected because it
// would let a match escape its root (spec.md §3 invariant).
func New(includes, excludes []string) (*Glob, error) {
	g := &Glob{}
	var err error
	if g.includes, err = compileAll(includes); err != nil {
		return nil, err
	}
	if g.excludes, err = compileAll(excludes); err != nil {
		return nil, err
	}
	return g, nil
}

// MustNew is New but panics on error; useful for static patterns in tests.
func MustNew(includes, excludes []string) *Glob {
	g, err := New(includes, excludes)
	if err != nil {
		panic(err)
	}
	return g
}

func compileAll(patterns []string) ([]compiledPattern, error) {
	seen := map[string]bool{}
	var out []compiledPattern
	for _, p := range patterns {
		p = path.Clean(p)
		if strings.HasPrefix(p, "..") || strings.Contains(p, "/../") {
			return nil, fmt.Errorf("glob pattern %q escapes its root via '..'", p)
		}
		if seen[p] {
			continue // duplicate patterns are normalized out
		}
		seen[p] = true
		re, err := compilePattern(p)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", p, err)
		}
		out = append(out, compiledPattern{raw: p, re: re, root: rootOf(p)})
	}
	return out, nil
}

// rootOf returns the longest path prefix of p that contains no glob
// metacharacter, i.e. the shallowest directory a matching path must live
// under.
func rootOf(p string) string {
	segments := strings.Split(p, "/")
	var fixed []string
	for _, s := range segments {
		if strings.ContainsAny(s, "*?[") {
			break
		}
		fixed = append(fixed, s)
	}
	return strings.Join(fixed, "/")
}

// compilePattern turns a glob pattern into an anchored regexp. "**"
// matches any number of path segments (including none); "*" matches within
// a single segment; "?" matches one non-slash rune.
func compilePattern(p string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	i := 0
	for i < len(p) {
		switch {
		case strings.HasPrefix(p[i:], "**/"):
			b.WriteString("(?:.*/)?")
			i += 3
		case strings.HasPrefix(p[i:], "**"):
			b.WriteString(".*")
			i += 2
		case p[i] == '*':
			b.WriteString("[^/]*")
			i++
		case p[i] == '?':
			b.WriteString("[^/]")
			i++
		default:
			b.WriteString(regexp.QuoteMeta(string(p[i])))
			i++
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

// Matches reports whether p (a "/"-separated path relative to the glob's
// root) matches: an include AND no exclude (spec.md testable property 2).
func (g *Glob) Matches(p string) bool {
	p = path.Clean(p)
	matched := false
	for _, inc := range g.includes {
		if inc.re.MatchString(p) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for _, exc := range g.excludes {
		if exc.re.MatchString(p) {
			globLog.Printf("excluded %s by %s", p, exc.raw)
			return false
		}
	}
	return true
}

// Roots returns the shallowest include-pattern prefixes, deduplicated and
// sorted, so callers can skip whole subtrees that no include pattern could
// ever touch.
func (g *Glob) Roots() []string {
	seen := map[string]bool{}
	var roots []string
	for _, inc := range g.includes {
		if !seen[inc.root] {
			seen[inc.root] = true
			roots = append(roots, inc.root)
		}
	}
	sort.Strings(roots)
	return dedupeNestedRoots(roots)
}

// dedupeNestedRoots drops any root that is a subdirectory of another root
// already in the list, since the shallower one already covers it.
func dedupeNestedRoots(roots []string) []string {
	var out []string
	for _, r := range roots {
		covered := false
		for _, other := range out {
			if other == "" || r == other || strings.HasPrefix(r, other+"/") {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, r)
		}
	}
	return out
}

// All returns a Glob matching every path ("**" include, no excludes) — the
// default origin_files/destination_files filter.
func All() *Glob {
	return MustNew([]string{"**"}, nil)
}
