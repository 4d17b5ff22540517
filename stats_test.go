package astigesture

import (
	"testing"
	"time"

	"github.com/asticode/go-astichartjs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	s := NewStats()
	assert.Equal(t, 0.0, s.FPS())

	// Frame times
	for idx := 0; idx < statsFrameTimesSize; idx++ {
		s.AddFrameTime(100 * time.Millisecond)
	}
	assert.InDelta(t, 10, s.FPS(), 1e-9)
	for idx := 0; idx < statsFrameTimesSize; idx++ {
		s.AddFrameTime(50 * time.Millisecond)
	}
	assert.InDelta(t, 20, s.FPS(), 1e-9)

	// Counts
	s.AddGesture("fist")
	s.AddGesture("fist")
	s.AddVoiceCommand(ActionVolumeUp)
	ss := s.Snapshot()
	assert.Equal(t, map[string]int{"fist": 2}, ss.GestureCounts)
	assert.Equal(t, map[string]int{"volume_up": 1}, ss.VoiceCounts)

	// Snapshot is a copy
	ss.GestureCounts["fist"] = 10
	assert.Equal(t, 2, s.Snapshot().GestureCounts["fist"])
}

func TestStatsChart(t *testing.T) {
	s := NewStats()
	s.AddFrameTime(100 * time.Millisecond)
	s.AddFrameTime(0)
	s.AddFrameTime(50 * time.Millisecond)
	c := s.Chart()
	require.Len(t, c.Data.Datasets, 2)
	require.Len(t, c.Data.Datasets[0].Data, 2)
	p0, ok := c.Data.Datasets[0].Data[0].(astichartjs.DataPoint)
	require.True(t, ok)
	assert.InDelta(t, 0.1, p0.X, 1e-9)
	assert.InDelta(t, 10, p0.Y, 1e-9)
	p1, ok := c.Data.Datasets[0].Data[1].(astichartjs.DataPoint)
	require.True(t, ok)
	assert.InDelta(t, 0.15, p1.X, 1e-9)
	assert.InDelta(t, 20, p1.Y, 1e-9)
	require.Len(t, c.Data.Datasets[1].Data, 2)
	a1, ok := c.Data.Datasets[1].Data[1].(astichartjs.DataPoint)
	require.True(t, ok)
	assert.InDelta(t, 0.15, a1.X, 1e-9)
	assert.InDelta(t, 20, a1.Y, 1e-9)
}
