package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/justsurfingit/jobdash/internal/apierr"
	"github.com/justsurfingit/jobdash/internal/client"
)

const barWidth = 40

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderJobs(w io.Writer, jobs []client.Job) {
	if len(jobs) == 0 {
		fmt.Fprintln(w, "No jobs found.")
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Tracking ID", "Title", "Employer", "Status", "Pay", "Location", "Updated"})
	for _, j := range jobs {
		t.AppendRow(table.Row{j.UserJobID, j.Title, j.EmployerName, j.Status, j.PayDisplay, j.Location, date(j.UpdatedAt)})
	}
	t.Render()
}

func renderJobList(w io.Writer, st client.JobListState) {
	renderJobs(w, st.Jobs)
	pages := st.TotalPages
	if pages == 0 {
		pages = 1
	}
	fmt.Fprintf(w, "Page %d of %d (%d jobs)\n", st.Page, pages, st.TotalCount)
}

func renderJob(w io.Writer, j client.Job) {
	t := newTable(w)
	t.AppendRows([]table.Row{
		{"Job ID", j.ID},
		{"Tracking ID", j.UserJobID},
		{"Title", j.Title},
		{"Employer", j.EmployerName},
		{"Status", j.Status},
		{"Work type", j.WorkType},
		{"Job type", j.JobType},
		{"Pay", j.PayDisplay},
		{"Location", j.Location},
		{"Posted", date(j.PostedDate)},
		{"Updated", date(j.UpdatedAt)},
		{"URL", j.URL},
	})
	t.Render()
	if j.Description != "" {
		fmt.Fprintf(w, "\n%s\n", j.Description)
	}
}

type bar struct {
	Label string
	Value int64
	Note  string
}

// renderBars draws a horizontal bar chart scaled to the largest value.
func renderBars(w io.Writer, bars []bar, width int) {
	var maxValue int64
	labelWidth := 0
	for _, b := range bars {
		if b.Value > maxValue {
			maxValue = b.Value
		}
		if n := len([]rune(b.Label)); n > labelWidth {
			labelWidth = n
		}
	}
	for _, b := range bars {
		n := 0
		if maxValue > 0 {
			n = int(b.Value * int64(width) / maxValue)
			if n == 0 && b.Value > 0 {
				n = 1
			}
		}
		line := fmt.Sprintf("%-*s │%s %d", labelWidth, b.Label, strings.Repeat("█", n), b.Value)
		if b.Note != "" {
			line += "  " + b.Note
		}
		fmt.Fprintln(w, line)
	}
}

func printNotice(w io.Writer, n apierr.Notice) {
	color.New(color.FgRed, color.Bold).Fprintf(w, "%s: ", n.Title)
	fmt.Fprintln(w, n.Message)
	if n.Action == apierr.ActionLogin {
		color.New(color.FgYellow).Fprintln(w, "Run `jobdash login` to sign in again.")
	}
}

func percent(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}

func date(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}
