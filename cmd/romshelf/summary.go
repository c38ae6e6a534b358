package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/romshelf/romshelf-builder/internal/enrich"
)

// summaryOrder fixes the row order of the run summary table.
var summaryOrder = []enrich.Status{
	enrich.StatusFound,
	enrich.StatusRefreshed,
	enrich.StatusNotFound,
	enrich.StatusNoNew,
	enrich.StatusSkipped,
	enrich.StatusOffline,
	enrich.StatusOfflineSkip,
}

func renderSummary(s enrich.Summary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Outcome", "Entries"})

	for _, status := range summaryOrder {
		if count := s.Counts[status]; count > 0 {
			tw.AppendRow(table.Row{string(status), strconv.Itoa(count)})
		}
	}
	tw.AppendFooter(table.Row{"Processed", strconv.Itoa(s.Processed)})
	tw.AppendFooter(table.Row{"Library records", strconv.Itoa(s.TotalRecords)})
	tw.AppendFooter(table.Row{"Unmatched", strconv.Itoa(s.Unmatched)})

	return tw.Render()
}
