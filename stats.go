package astigesture

import (
	"sync"
	"time"

	"github.com/asticode/go-astichartjs"
	astiptr "github.com/asticode/go-astitools/ptr"
)

// Number of frame times kept to compute the frame rate
const statsFrameTimesSize = 100

// Stats monitors the frame rate and the gestures and voice commands detected
type Stats struct {
	fts  []time.Duration
	gs   map[string]int
	m    sync.Mutex // Locks fts, gs, next and vs
	next int
	vs   map[string]int
}

// StatsSnapshot represents a snapshot of the stats
type StatsSnapshot struct {
	FPS           float64        `json:"fps"`
	GestureCounts map[string]int `json:"gesture_counts"`
	VoiceCounts   map[string]int `json:"voice_counts"`
}

// NewStats creates new stats
func NewStats() *Stats {
	return &Stats{
		gs: make(map[string]int),
		vs: make(map[string]int),
	}
}

// AddFrameTime adds the processing time of one frame
func (s *Stats) AddFrameTime(d time.Duration) {
	// Lock
	s.m.Lock()
	defer s.m.Unlock()

	// Append
	if len(s.fts) < statsFrameTimesSize {
		s.fts = append(s.fts, d)
		return
	}

	// Overwrite oldest
	s.fts[s.next] = d
	s.next = (s.next + 1) % statsFrameTimesSize
}

// AddGesture counts a detected gesture
func (s *Stats) AddGesture(label string) {
	s.m.Lock()
	defer s.m.Unlock()
	s.gs[label]++
}

// AddVoiceCommand counts a recognized voice command
func (s *Stats) AddVoiceCommand(a ActionToken) {
	s.m.Lock()
	defer s.m.Unlock()
	s.vs[string(a)]++
}

// FPS returns the average frame rate
func (s *Stats) FPS() float64 {
	s.m.Lock()
	defer s.m.Unlock()
	return s.fpsUnsafe()
}

// fpsUnsafe returns the average frame rate while making the assumption that the mutex is locked
func (s *Stats) fpsUnsafe() float64 {
	// No frame times
	if len(s.fts) == 0 {
		return 0
	}

	// Compute mean
	var t time.Duration
	for _, d := range s.fts {
		t += d
	}
	m := t.Seconds() / float64(len(s.fts))
	if m <= 0 {
		return 0
	}
	return 1 / m
}

// Snapshot returns a snapshot of the stats
func (s *Stats) Snapshot() (o StatsSnapshot) {
	// Lock
	s.m.Lock()
	defer s.m.Unlock()

	// Create snapshot
	o = StatsSnapshot{
		FPS:           s.fpsUnsafe(),
		GestureCounts: make(map[string]int, len(s.gs)),
		VoiceCounts:   make(map[string]int, len(s.vs)),
	}

	// Copy counts
	for k, v := range s.gs {
		o.GestureCounts[k] = v
	}
	for k, v := range s.vs {
		o.VoiceCounts[k] = v
	}
	return
}

// orderedFrameTimesUnsafe returns frame times from oldest to newest while making the assumption that
// the mutex is locked
func (s *Stats) orderedFrameTimesUnsafe() (fts []time.Duration) {
	fts = make([]time.Duration, 0, len(s.fts))
	fts = append(fts, s.fts[s.next:]...)
	return append(fts, s.fts[:s.next]...)
}

// Chart returns a chart of the instantaneous frame rate over the last frames
func (s *Stats) Chart() (c astichartjs.Chart) {
	// Create chart
	c = astichartjs.Chart{
		Data: &astichartjs.Data{
			Datasets: []astichartjs.Dataset{{
				BackgroundColor: astichartjs.ChartBackgroundColorGreen,
				BorderColor:     astichartjs.ChartBorderColorGreen,
				Label:           "Frame rate",
			}},
		},
		Options: &astichartjs.Options{
			Scales: &astichartjs.Scales{
				XAxes: []astichartjs.Axis{
					{
						Position: astichartjs.ChartAxisPositionsBottom,
						ScaleLabel: &astichartjs.ScaleLabel{
							Display:     astiptr.Bool(true),
							LabelString: "Elapsed (s)",
						},
						Type: astichartjs.ChartAxisTypesLinear,
					},
				},
				YAxes: []astichartjs.Axis{
					{
						ScaleLabel: &astichartjs.ScaleLabel{
							Display:     astiptr.Bool(true),
							LabelString: "FPS",
						},
					},
				},
			},
			Title: &astichartjs.Title{Display: astiptr.Bool(true)},
		},
		Type: astichartjs.ChartTypeLine,
	}

	// Lock
	s.m.Lock()
	defer s.m.Unlock()

	// Loop through frame times
	var x float64
	for _, d := range s.orderedFrameTimesUnsafe() {
		// Invalid frame time
		if d <= 0 {
			continue
		}

		// Add data point
		x += d.Seconds()
		c.Data.Datasets[0].Data = append(c.Data.Datasets[0].Data, astichartjs.DataPoint{
			X: x,
			Y: 1 / d.Seconds(),
		})
	}

	// Add average
	fps := s.fpsUnsafe()
	c.Data.Datasets = append(c.Data.Datasets, astichartjs.Dataset{
		BackgroundColor: astichartjs.ChartBackgroundColorBlue,
		BorderColor:     astichartjs.ChartBorderColorBlue,
		Data: []interface{}{
			astichartjs.DataPoint{X: 0, Y: fps},
			astichartjs.DataPoint{X: x, Y: fps},
		},
		Label: "Average frame rate",
	})
	return
}
