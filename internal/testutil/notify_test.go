package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingNotifier_RecordsInOrder(t *testing.T) {
	n := &RecordingNotifier{}
	ctx := context.Background()

	require.NoError(t, n.Notify(ctx, "a", "first"))
	require.NoError(t, n.Notify(ctx, "b", "second"))

	assert.Equal(t, []string{"first", "second"}, n.Bodies())
	assert.Equal(t, Notification{Title: "b", Body: "second"}, n.Sent()[1])
}

func TestRecordingNotifier_ErrStillRecords(t *testing.T) {
	boom := errors.New("boom")
	n := &RecordingNotifier{Err: boom}

	err := n.Notify(context.Background(), "t", "b")
	assert.ErrorIs(t, err, boom)
	assert.Len(t, n.Sent(), 1)
}

func TestRecordingNotifier_Reset(t *testing.T) {
	n := &RecordingNotifier{}
	require.NoError(t, n.Notify(context.Background(), "t", "b"))
	n.Reset()
	assert.Empty(t, n.Sent())
}
