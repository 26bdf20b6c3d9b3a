package consistency

import (
	"bufio"
	"fmt"
	"sort"
	"strings"

	"github.com/sourcebridge/sourcebridge/pkg/engine/diff"
)

const (
	headerLine    = "Consistency file for migration-derived changes."
	algorithmLine = "Algorithm: "
	patchMarker   = "--- patch ---"
)

// String renders the on-disk form: a header, the algorithm name, a sorted
// path/hash table, and the unified-diff patch stream.
func (f *File) String() string {
	var b strings.Builder
	fmt.Fprintln(&b, headerLine)
	fmt.Fprintln(&b, algorithmLine+f.AlgorithmName)

	paths := make([]string, 0, len(f.Hashes))
	for path := range f.Hashes {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		fmt.Fprintf(&b, "%s  %s\n", f.Hashes[path], path)
	}

	fmt.Fprintln(&b, patchMarker)
	b.WriteString(f.Patch.String())
	return b.String()
}

// Parse reads a ConsistencyFile back from its on-disk text form.
func Parse(text string) (*File, error) {
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !sc.Scan() {
		return nil, fmt.Errorf("consistency file: empty")
	}
	if sc.Text() != headerLine {
		return nil, fmt.Errorf("consistency file: unrecognized header %q", sc.Text())
	}

	if !sc.Scan() || !strings.HasPrefix(sc.Text(), algorithmLine) {
		return nil, fmt.Errorf("consistency file: missing algorithm line")
	}
	algo := strings.TrimPrefix(sc.Text(), algorithmLine)

	hashes := map[string]string{}
	var patchLines []string
	inPatch := false
	for sc.Scan() {
		line := sc.Text()
		if !inPatch && line == patchMarker {
			inPatch = true
			continue
		}
		if inPatch {
			patchLines = append(patchLines, line)
			continue
		}
		hash, path, ok := strings.Cut(line, "  ")
		if !ok {
			return nil, fmt.Errorf("consistency file: malformed hash line %q", line)
		}
		hashes[path] = hash
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	patch, err := diff.Parse(strings.Join(patchLines, "\n"))
	if err != nil {
		return nil, fmt.Errorf("consistency file: %w", err)
	}

	return &File{AlgorithmName: algo, Hashes: hashes, Patch: patch}, nil
}
