package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recon-suite/secretscraper/crawl"
)

func TestParseRangesMatchesSpecExample(t *testing.T) {
	ranges, err := ParseRanges("200,300-400")
	require.NoError(t, err)
	require.Len(t, ranges, 2)
	assert.Equal(t, Range{Start: 200, End: 201}, ranges[0])
	assert.Equal(t, Range{Start: 300, End: 401}, ranges[1])
}

func TestParseRangesRejectsInvertedRange(t *testing.T) {
	_, err := ParseRanges("400-300")
	assert.Error(t, err)
}

func Test404AlwaysExcludedEvenWithoutFilter(t *testing.T) {
	assert.False(t, Accept(nil, 404))
	ranges, err := ParseRanges("404")
	require.NoError(t, err)
	assert.False(t, Accept(ranges, 404))
}

func TestAcceptWithNoFilterAllowsEverythingButNotFound(t *testing.T) {
	assert.True(t, Accept(nil, 200))
	assert.True(t, Accept(nil, 500))
}

func TestAcceptHonorsExplicitRanges(t *testing.T) {
	ranges, err := ParseRanges("200,300-400")
	require.NoError(t, err)
	assert.True(t, Accept(ranges, 200))
	assert.True(t, Accept(ranges, 350))
	assert.False(t, Accept(ranges, 201))
}

func buildStateWithOneNode(t *testing.T, status string) *crawl.State {
	t.Helper()
	state := crawl.NewState()
	node, err := crawl.NewURLNode("http://example.com/", 0, nil)
	require.NoError(t, err)
	node.ResponseStatus = status
	node.Title = "Example"
	state.MarkVisited(node)
	return state
}

func TestWriteTidyReport(t *testing.T) {
	state := buildStateWithOneNode(t, "200")
	var buf bytes.Buffer
	require.NoError(t, New(false, false).WriteReport(&buf, state, nil))
	assert.Contains(t, buf.String(), "http://example.com/")
	assert.Contains(t, buf.String(), "Example")
}

func TestWriteReportFiltersOut404(t *testing.T) {
	state := buildStateWithOneNode(t, "404")
	var buf bytes.Buffer
	require.NoError(t, New(false, false).WriteReport(&buf, state, nil))
	assert.Empty(t, buf.String())
}

func TestWriteCSVHasExpectedColumns(t *testing.T) {
	state := buildStateWithOneNode(t, "200")
	rows := BuildRows(state, nil)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "URL")
	assert.Contains(t, lines[0], "Secrets")
}
