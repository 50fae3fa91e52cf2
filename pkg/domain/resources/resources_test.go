package resources

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRegistryLoadsGlossaryAndExamples(t *testing.T) {
	r, err := NewRegistry(nil)
	require.NoError(t, err)

	metas := r.List()
	require.NotEmpty(t, metas)

	var sawGlossary, sawExample bool
	for _, m := range metas {
		if m.URI == "domain://glossary/boot-time" {
			sawGlossary = true
			require.Equal(t, "application/json", m.MimeType)
		}
		if m.URI == "domain://examples/boot-time-regression" {
			sawExample = true
		}
	}
	require.True(t, sawGlossary)
	require.True(t, sawExample)
}

func TestReadReturnsEncodedJSONContent(t *testing.T) {
	r, err := NewRegistry(nil)
	require.NoError(t, err)

	result, ok := r.Read("domain://glossary/boot-time")
	require.True(t, ok)
	require.Len(t, result.Contents, 1)
	require.Contains(t, result.Contents[0].Text, "boot.time.total_ms")
	require.Equal(t, "domain://glossary/boot-time", result.Contents[0].URI)
}

func TestReadUnknownURIReturnsFalse(t *testing.T) {
	r, err := NewRegistry(nil)
	require.NoError(t, err)

	_, ok := r.Read("domain://glossary/does-not-exist")
	require.False(t, ok)
}

func TestContentReturnsParsedMap(t *testing.T) {
	r, err := NewRegistry(nil)
	require.NoError(t, err)

	content, ok := r.Content("domain://glossary/os-identifiers")
	require.True(t, ok)
	identifiers, ok := content["known_identifiers"].([]interface{})
	require.True(t, ok)
	require.Contains(t, identifiers, "rhel")
}

func TestListIsSortedByURI(t *testing.T) {
	r, err := NewRegistry(nil)
	require.NoError(t, err)

	metas := r.List()
	for i := 1; i < len(metas); i++ {
		require.LessOrEqual(t, metas[i-1].URI, metas[i].URI)
	}
}
