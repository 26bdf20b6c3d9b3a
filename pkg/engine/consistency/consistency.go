// Package consistency implements the ConsistencyFile: a record, checked
// into the destination alongside an imported change, that lets a later
// merge-import reconstruct the pristine origin tree a change started from
// even after the destination has drifted (spec.md §3, §4.3).
package consistency

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/sourcebridge/sourcebridge/pkg/engine/diff"
	"github.com/sourcebridge/sourcebridge/pkg/engine/model"
)

// maxConcurrentHashes bounds the goroutines Generate spawns while hashing a
// destination tree, mirroring the teacher's download-concurrency pool.
const maxConcurrentHashes = 8

// File is the in-memory form of a ConsistencyFile: a hash table over the
// destination tree at import time, plus the patch that reverse-applies
// onto that tree to reconstruct the pristine origin tree.
type File struct {
	AlgorithmName string
	Hashes        map[string]string
	Patch         diff.Patch
}

// Generate builds a ConsistencyFile from the origin tree a change was
// derived from and the destination tree it was written to. Hashes cover
// every path in destination so a later read can detect drift before
// trusting the patch; Patch is the forward origin->destination diff, whose
// Negate() reconstructs origin from a hash-verified destination.
func Generate(origin, destination map[string][]byte, algo Algorithm) *File {
	paths := make([]string, 0, len(destination))
	for path := range destination {
		paths = append(paths, path)
	}

	var mu sync.Mutex
	hashes := make(map[string]string, len(destination))
	p := pool.New().WithMaxGoroutines(maxConcurrentHashes)
	for _, path := range paths {
		path := path
		p.Go(func() {
			sum := algo.Sum(destination[path])
			mu.Lock()
			hashes[path] = sum
			mu.Unlock()
		})
	}
	p.Wait()

	return &File{
		AlgorithmName: algo.Name(),
		Hashes:        hashes,
		Patch:         diff.CompareTrees(origin, destination, 3, nil),
	}
}

// Validate checks that every path recorded in f.Hashes still has matching
// content in destination. A mismatch means the destination has drifted
// since import and the ConsistencyFile can no longer be trusted to
// reconstruct the origin tree (spec.md §4.3: "has hash value X in
// ConsistencyFile but Y in directory").
func (f *File) Validate(destination map[string][]byte) error {
	algo, err := AlgorithmByName(f.AlgorithmName)
	if err != nil {
		return err
	}
	paths := make([]string, 0, len(f.Hashes))
	for path := range f.Hashes {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		want := f.Hashes[path]
		content, ok := destination[path]
		if !ok {
			return &model.ValidationError{Message: fmt.Sprintf(
				"consistency file: %s is missing from the directory but has hash value %s in ConsistencyFile", path, want)}
		}
		got := algo.Sum(content)
		if got != want {
			return &model.ValidationError{Message: fmt.Sprintf(
				"consistency file: %s has hash value %s in ConsistencyFile but %s in directory", path, want, got)}
		}
	}
	return nil
}

// Reconstruct validates destination against f, then reverse-applies f's
// patch to rebuild the pristine origin tree (testable property 4: round
// trips byte-for-byte on every recorded path).
func (f *File) Reconstruct(destination map[string][]byte) (map[string][]byte, error) {
	if err := f.Validate(destination); err != nil {
		return nil, err
	}
	return diff.ApplyToTree(destination, f.Patch.Negate())
}
