package telemetry

import (
	"sync"
)

// Report is a single call recorded by Recorder.
type Report struct {
	Level  string
	Id     string
	Params []any
}

// Recorder is an API that keeps every report in memory, it is meant for tests
// that need to assert a component reported something.
type Recorder struct {
	mu      sync.Mutex
	reports []Report
}

func (r *Recorder) record(level, id string, params []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, Report{Level: level, Id: id, Params: params})
}

func (r *Recorder) ReportCritical(id string, params ...any) {
	r.record("critical", id, params)
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.record("broken", id, params)
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.record("warning", id, params)
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.record("debug", msg, params)
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.record("count", id, []any{count})
}

// Reports returns the recorded reports of the given level, all of them if level is empty.
func (r *Recorder) Reports(level string) []Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Report
	for _, rep := range r.reports {
		if level == "" || rep.Level == level {
			out = append(out, rep)
		}
	}
	return out
}
