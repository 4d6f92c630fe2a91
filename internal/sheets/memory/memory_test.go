package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zaad/internal/aggregate"
)

func TestExporterKeepsLatest(t *testing.T) {
	e := New(2)
	_, ok := e.Last()
	require.False(t, ok, "Last() on empty exporter should report false")

	for _, d := range []string{"2024-03-01", "2024-03-02", "2024-03-03"} {
		ref, err := e.Export(context.Background(), aggregate.Report{ReferenceDate: d})
		require.NoError(t, err)
		assert.Equal(t, "mem:"+d, ref)
	}

	assert.Equal(t, 2, e.Count())
	last, ok := e.Last()
	require.True(t, ok)
	assert.Equal(t, "2024-03-03", last.ReferenceDate)
}

func TestExporterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(1).Export(ctx, aggregate.Report{})
	assert.Error(t, err)
}
