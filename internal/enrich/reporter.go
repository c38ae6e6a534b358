package enrich

// Status describes the per-entry outcome shown on the progress line.
type Status string

const (
	StatusFound       Status = "Found"
	StatusNotFound    Status = "Not Found"
	StatusOfflineSkip Status = "Offline Skip"
	StatusOffline     Status = "Offline"
	StatusSkipped     Status = "Skipped"
	StatusRefreshed   Status = "Refreshed"
	StatusNoNew       Status = "No New"
)

// Reporter receives incremental progress while the library is built.
type Reporter interface {
	Start(total int)
	Step(title string, status Status)
	Done()
}

// NopReporter discards all progress events.
type NopReporter struct{}

func (NopReporter) Start(int)           {}
func (NopReporter) Step(string, Status) {}
func (NopReporter) Done()               {}
