package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"admin-console/internal/notify"
	"admin-console/pkg/common"
	"admin-console/pkg/csvexport"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

func printOK(w io.Writer, msg string)    { fmt.Fprintln(w, green("✓ ")+msg) }
func printError(w io.Writer, msg string) { fmt.Fprintln(w, red("✗ ")+msg) }

func printNotices(w io.Writer, notices []notify.Notice) {
	for _, n := range notices {
		var tag string
		switch n.Level {
		case notify.LevelSuccess:
			tag = green("✓")
		case notify.LevelError:
			tag = red("✗")
		case notify.LevelWarning:
			tag = yellow("!")
		default:
			tag = cyan("i")
		}
		fmt.Fprintf(w, "%s %s\n", tag, n.Message)
	}
}

func renderTable(w io.Writer, header []string, rows [][]string) {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetBorder(false)
	t.AppendBulk(rows)
	t.Render()
}

// listSnapshot is the part of a list view the CLI prints.
type listSnapshot struct {
	Status     string            `json:"status"`
	Page       int               `json:"page"`
	ZeroBased  bool              `json:"zeroBased"`
	Rows       []json.RawMessage `json:"rows"`
	Pagination common.Pagination `json:"pagination"`
	Error      string            `json:"error"`
}

// renderList prints a list view as a table whose columns follow the field
// order of the first row.
func renderList(w io.Writer, view interface{}) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return err
	}
	var snap listSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return err
	}
	if len(snap.Rows) == 0 {
		fmt.Fprintln(w, faint("no rows"))
		return nil
	}
	first, err := csvexport.ParseRecord(snap.Rows[0])
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(snap.Rows))
	for _, r := range snap.Rows {
		rec, err := csvexport.ParseRecord(r)
		if err != nil {
			return err
		}
		line := make([]string, len(first.Keys))
		for i, k := range first.Keys {
			line[i] = rec.Text(k)
		}
		rows = append(rows, line)
	}
	renderTable(w, first.Keys, rows)
	p := snap.Pagination
	fmt.Fprintln(w, faint(fmt.Sprintf("page %d of %d, %d rows total", snap.Page, max(p.TotalPages, 1), p.Total)))
	if next := p.NextPage(); next != 0 {
		if snap.ZeroBased {
			next--
		}
		fmt.Fprintln(w, faint(fmt.Sprintf("more: -page %d", next)))
	}
	return nil
}

// renderObject prints one JSON object as a two-column table.
func renderObject(w io.Writer, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	rec, err := csvexport.ParseRecord(raw)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(rec.Keys))
	for _, k := range rec.Keys {
		rows = append(rows, []string{k, rec.Text(k)})
	}
	renderTable(w, []string{"Field", "Value"}, rows)
	return nil
}
