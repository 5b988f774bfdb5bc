package agent

import "time"

// Recorder receives the outcome of every coordinator operation.
type Recorder interface {
	RecordInsert(d time.Duration, err error)
	RecordSearch(k, found int, d time.Duration, err error)
	// RecordBuild reports how many pending entries were materialized and how many remain.
	RecordBuild(built, pending int, d time.Duration, err error)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) RecordInsert(time.Duration, error)           {}
func (NoopRecorder) RecordSearch(int, int, time.Duration, error) {}
func (NoopRecorder) RecordBuild(int, int, time.Duration, error)  {}
