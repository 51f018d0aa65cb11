package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
)

const timeLayout = "2006-01-02 15:04:05"

var (
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	amber = color.New(color.FgYellow).SprintFunc()
)

func errorText(s string) string { return red(s) }
func warnText(s string) string  { return amber(s) }
func okText(s string) string    { return green(s) }

// renderEntries prints entries as a table in the order given.
func renderEntries(w io.Writer, entries []models.DiaryEntry) {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, faint("no entries"))
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 50
	tbl.Wrap = true
	tbl.AddRow(bold("#"), bold("Recorded"), bold("Weight (kg)"), bold("Steps"), bold("kcal in"), bold("kcal out"), bold("Note"))
	for i, e := range entries {
		tbl.AddRow(i+1, e.Time().Format(timeLayout), e.WeightKg, e.Steps, e.CaloriesIn, e.CaloriesOut, e.Note)
	}

	_, _ = fmt.Fprintln(w, tbl)
	switch n := len(entries); n {
	case 1:
		_, _ = fmt.Fprintln(w, faint("1 entry"))
	default:
		_, _ = fmt.Fprintln(w, faint(fmt.Sprintf("%d entries", n)))
	}
}

// renderStatus prints label/value pairs aligned in two columns.
func renderStatus(w io.Writer, rows [][2]string) {
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, r := range rows {
		tbl.AddRow(bold(r[0]), r[1])
	}
	_, _ = fmt.Fprintln(w, tbl)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(timeLayout)
}
