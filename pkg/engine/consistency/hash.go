package consistency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Algorithm computes a hex-encoded content digest for a ConsistencyFile's
// hash table. The default is sha256; blake2b is offered as a faster
// alternate for large trees (spec.md §4.3 "content hashing").
type Algorithm interface {
	Name() string
	Sum(data []byte) string
}

type sha256Algorithm struct{}

func (sha256Algorithm) Name() string { return "sha256" }
func (sha256Algorithm) Sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type blake2bAlgorithm struct{}

func (blake2bAlgorithm) Name() string { return "blake2b" }
func (blake2bAlgorithm) Sum(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SHA256 is the default hashing algorithm.
var SHA256 Algorithm = sha256Algorithm{}

// Blake2b is the alternate algorithm, selected by name ("blake2b") through
// AlgorithmByName; workflow definitions have no setting for it.
var Blake2b Algorithm = blake2bAlgorithm{}

// AlgorithmByName resolves an algorithm by the name recorded in a
// ConsistencyFile's header.
func AlgorithmByName(name string) (Algorithm, error) {
	switch name {
	case "", "sha256":
		return SHA256, nil
	case "blake2b":
		return Blake2b, nil
	default:
		return nil, fmt.Errorf("unknown consistency file algorithm %q", name)
	}
}
