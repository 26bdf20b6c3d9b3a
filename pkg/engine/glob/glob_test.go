package glob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesIncludeExclude(t *testing.T) {
	g, err := New([]string{"src/**"}, []string{"src/**/*_test.go"})
	require.NoError(t, err)

	assert.True(t, g.Matches("src/main.go"))
	assert.True(t, g.Matches("src/pkg/util.go"))
	assert.False(t, g.Matches("src/pkg/util_test.go"), "excluded pattern wins over include")
	assert.False(t, g.Matches("docs/readme.md"), "outside every include")
}

func TestMatchesSingleStarStaysWithinSegment(t *testing.T) {
	g := MustNew([]string{"src/*.go"}, nil)
	assert.True(t, g.Matches("src/main.go"))
	assert.False(t, g.Matches("src/pkg/util.go"))
}

func TestNewRejectsDotDotEscape(t *testing.T) {
	_, err := New([]string{"../outside/**"}, nil)
	assert.Error(t, err)
}

func TestNewDedupesPatterns(t *testing.T) {
	g, err := New([]string{"src/**", "src/**"}, nil)
	require.NoError(t, err)
	assert.True(t, g.Matches("src/a.go"))
}

func TestAllMatchesEverything(t *testing.T) {
	g := All()
	assert.True(t, g.Matches("anything/at/all.txt"))
	assert.True(t, g.Matches("top.go"))
}

func TestRootsDedupesNested(t *testing.T) {
	g := MustNew([]string{"src/**", "src/pkg/**", "docs/*.md"}, nil)
	roots := g.Roots()
	assert.ElementsMatch(t, []string{"docs", "src"}, roots)
}

func TestRootsOfUnanchoredPattern(t *testing.T) {
	g := MustNew([]string{"**/*.go"}, nil)
	assert.Equal(t, []string{""}, g.Roots())
}
