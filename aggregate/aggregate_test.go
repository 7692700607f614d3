package aggregate_test

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	frontmatter "github.com/tettuan/frontmatter-to-schema"
	"github.com/tettuan/frontmatter-to-schema/aggregate"
)

func TestAggregator_Lifecycle(t *testing.T) {
	a := aggregate.New()

	// Collecting operations are invalid before Initialize.
	err := a.Integrate("a", nil, "")
	iss, ok := frontmatter.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, frontmatter.CodeInvalidState, iss[0].Code)

	require.NoError(t, a.Initialize(3, aggregate.FormatJSON))
	require.NoError(t, a.Integrate("a", map[string]any{"kind": "cli", "desc": nil}, "# a"))
	require.NoError(t, a.Integrate("b", map[string]any{"kind": "cli"}, "# b"))
	require.NoError(t, a.RecordFailure("c", frontmatter.Issue{
		Code: frontmatter.CodeInvalidDirective, Message: "bad value",
	}))

	// Serialize before Finalize is a disallowed transition.
	_, err = a.Serialize()
	iss, ok = frontmatter.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, frontmatter.CodeInvalidState, iss[0].Code)

	res, err := a.Finalize()
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 1, res.Failed)
	assert.InDelta(t, 2.0/3.0, res.SuccessRate, 1e-9)
	assert.Equal(t, 1, res.UniqueValueCounts["kind"])
	assert.Equal(t, 1, res.NullCounts["desc"])
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "c", res.Failures[0].DocID)
	assert.NotEmpty(t, res.RunID)

	// Collecting operations are invalid once Finalized.
	err = a.Integrate("d", nil, "")
	iss, ok = frontmatter.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, frontmatter.CodeInvalidState, iss[0].Code)

	out, err := a.Serialize()
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.EqualValues(t, 2, decoded["processed"])
}

func TestAggregator_YAMLSerialization(t *testing.T) {
	a := aggregate.New()
	require.NoError(t, a.Initialize(1, aggregate.FormatYAML))
	require.NoError(t, a.Integrate("a", map[string]any{"title": "x"}, ""))
	_, err := a.Finalize()
	require.NoError(t, err)
	out, err := a.Serialize()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(out), "processed: 1"), "yaml output: %s", out)
}

func TestAggregator_UnsupportedFormat(t *testing.T) {
	a := aggregate.New()
	err := a.Initialize(1, aggregate.Format("xml"))
	iss, ok := frontmatter.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, frontmatter.CodeUnsupportedFormat, iss[0].Code)
}

func TestParseFormat(t *testing.T) {
	for _, good := range []string{"json", "yaml"} {
		if _, err := aggregate.ParseFormat(good); err != nil {
			t.Fatalf("ParseFormat(%q): %v", good, err)
		}
	}
	_, err := aggregate.ParseFormat("toml")
	iss, ok := frontmatter.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, frontmatter.CodeUnsupportedFormat, iss[0].Code)
}
