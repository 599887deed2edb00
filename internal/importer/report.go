package importer

import (
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// PrintSummary renders the run counters as a console table. It is called
// even after a cancelled or failed run, over whatever the run managed to do.
func PrintSummary(title string, stats Stats) {
	color.New(color.FgCyan, color.Bold).Printf("\n%s\n", title)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Outcome", "Count"})
	table.Append([]string{"Rows read", strconv.Itoa(stats.TotalRows)})
	table.Append([]string{"Created", strconv.Itoa(stats.Created)})
	table.Append([]string{"Duplicates", strconv.Itoa(stats.Duplicates)})
	table.Append([]string{"Errors", strconv.Itoa(stats.Errors)})
	table.Append([]string{"Skipped", strconv.Itoa(stats.Skipped)})
	table.Append([]string{"Images attached", strconv.Itoa(stats.ImagesAttached)})
	table.Render()

	if stats.Errors > 0 {
		color.Yellow("%d record(s) failed; see the log above for details.", stats.Errors)
	} else {
		color.Green("Completed without record errors.")
	}
}
