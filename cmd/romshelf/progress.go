package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/romshelf/romshelf-builder/internal/enrich"
)

// barReporter renders enrichment progress as a terminal progress bar
// with the current title and per-entry outcome in the description.
type barReporter struct {
	bar *progressbar.ProgressBar
}

func newBarReporter() *barReporter {
	return &barReporter{}
}

func (r *barReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription("building library"),
	)
}

func (r *barReporter) Step(title string, status enrich.Status) {
	if r.bar == nil {
		return
	}
	r.bar.Describe(fmt.Sprintf("%-28.28s | %s", title, status))
	_ = r.bar.Add(1)
}

func (r *barReporter) Done() {
	if r.bar == nil {
		return
	}
	_ = r.bar.Finish()
	fmt.Fprintln(os.Stderr)
}
