package chrono

import "time"

// API is the clock the rest of the codebase depends on.
//
// note: fault injection point
type API interface {
	Now() time.Time
	// Sleep blocks for d, it is not cancellable.
	Sleep(d time.Duration)
}

type StandardImpl struct{}

func NewStandardImpl() StandardImpl {
	return StandardImpl{}
}

func (StandardImpl) Now() time.Time {
	return time.Now()
}

func (StandardImpl) Sleep(d time.Duration) {
	time.Sleep(d)
}
