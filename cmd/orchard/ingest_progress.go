package main

import (
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"

	"orchard/internal/ingest"
)

// ingestProgress renders per-archive record counters while workers stream.
// It only activates on a terminal; otherwise progress stays in the logs.
type ingestProgress struct {
	pw progress.Writer

	mu       sync.Mutex
	trackers map[string]*progress.Tracker
	stopped  bool
}

func newIngestProgress(w io.Writer) *ingestProgress {
	if !shouldColorize(w) {
		return nil
	}

	pw := progress.NewWriter()
	pw.SetOutputWriter(w)
	pw.SetTrackerLength(25)
	pw.SetUpdateFrequency(200 * time.Millisecond)
	pw.SetStyle(progress.StyleDefault)
	pw.Style().Visibility.ETA = false
	pw.Style().Visibility.ETAOverall = false
	pw.Style().Visibility.Percentage = false
	pw.Style().Visibility.Speed = false
	pw.Style().Visibility.TrackerOverall = false
	go pw.Render()

	return &ingestProgress{
		pw:       pw,
		trackers: make(map[string]*progress.Tracker),
	}
}

func (p *ingestProgress) update(event ingest.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}

	tracker, ok := p.trackers[event.Archive]
	if !ok {
		tracker = &progress.Tracker{
			Message: filepath.Base(event.Archive),
			Units:   progress.UnitsDefault,
		}
		p.pw.AppendTracker(tracker)
		p.trackers[event.Archive] = tracker
	}
	tracker.SetValue(event.Records)
}

func (p *ingestProgress) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true

	for _, tracker := range p.trackers {
		tracker.MarkAsDone()
	}
	p.pw.Stop()
}
