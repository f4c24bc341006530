package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressMonotonicPercent(t *testing.T) {
	tracker := NewProgressTracker()
	tracker.Start("u1")
	tracker.Update("u1", StageEmbedding, 50)

	// 乱序到达的低百分比不回退
	tracker.Update("u1", StageChunking, 35)

	last, ok := tracker.Last("u1")
	require.True(t, ok)
	assert.Equal(t, StageChunking, last.Stage)
	assert.Equal(t, 50, last.Percent)
}

func TestProgressLastUnknownUpload(t *testing.T) {
	tracker := NewProgressTracker()

	_, ok := tracker.Last("missing")

	assert.False(t, ok)
}

func TestProgressSubscribeReplaysSnapshot(t *testing.T) {
	tracker := NewProgressTracker()
	tracker.Start("u1")
	tracker.Update("u1", StageExtracting, 20)

	events, cancel, ok := tracker.Subscribe("u1")
	require.True(t, ok)
	defer cancel()

	first := <-events
	assert.Equal(t, StageExtracting, first.Stage)
	assert.Equal(t, 20, first.Percent)
}

func TestProgressFinishClosesSubscribers(t *testing.T) {
	tracker := NewProgressTracker()
	tracker.Start("u1")

	events, cancel, ok := tracker.Subscribe("u1")
	require.True(t, ok)
	defer cancel()

	<-events // replayed snapshot
	tracker.Finish("u1")

	final := <-events
	assert.Equal(t, StageDone, final.Stage)
	assert.Equal(t, 100, final.Percent)
	assert.True(t, final.Final)

	_, open := <-events
	assert.False(t, open)

	// 终态后状态被清除
	_, tracked := tracker.Last("u1")
	assert.False(t, tracked)
}

func TestProgressFailClearsState(t *testing.T) {
	tracker := NewProgressTracker()
	tracker.Start("u1")
	tracker.Fail("u1", "file too large")

	_, ok := tracker.Last("u1")
	assert.False(t, ok)

	_, _, subscribable := tracker.Subscribe("u1")
	assert.False(t, subscribable)
}

func TestProgressSubscribeUnknownUpload(t *testing.T) {
	tracker := NewProgressTracker()

	_, _, ok := tracker.Subscribe("missing")

	assert.False(t, ok)
}
