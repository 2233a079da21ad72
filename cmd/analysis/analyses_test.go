package main

import (
	"context"
	"testing"

	"github.com/jcalabro/hashkit"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeFilter(t *testing.T) {
	size, k, _, err := hashkit.OptimalFilterParams(5000, 0.01)
	require.NoError(t, err)

	rep, err := analyzeFilter(context.Background(), size, k, 5000, hashkit.XXH3)
	require.NoError(t, err)
	assert.Equal(t, 5000, rep.Probes)
	assert.Less(t, rep.Measured, 0.03)
	assert.InDelta(t, 0.01, rep.Estimated, 0.002)
}

func TestAnalyzeFilterCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := analyzeFilter(ctx, 1000, 3, 100, hashkit.XXH3)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeSketch(t *testing.T) {
	rep, err := analyzeSketch(context.Background(), 4, 1000, 50_000, 7)
	require.NoError(t, err)
	assert.Equal(t, 50_000, rep.Events)
	assert.Positive(t, rep.Keys)
	assert.LessOrEqual(t, rep.MeanOver, rep.Bound)
}

func TestAnalyzeRing(t *testing.T) {
	logger, hook := logtest.NewNullLogger()

	rep, err := analyzeRing(context.Background(), 1<<32, 64, defaultNodes(4), 20_000, logger)
	require.NoError(t, err)
	assert.Equal(t, "n1", rep.Removed)
	assert.Zero(t, rep.Stray)
	assert.Positive(t, rep.Moved)
	assert.Greater(t, rep.MinShare, 0.1)
	assert.Less(t, rep.MaxShare, 0.4)

	// Four joins and one leave
	assert.Len(t, hook.AllEntries(), 5)
}

func TestAnalyzeRingNoNodes(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	_, err := analyzeRing(context.Background(), 100, 1, nil, 10, logger)
	require.ErrorIs(t, err, hashkit.ErrNoNodes)
}
