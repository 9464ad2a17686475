package compose

import (
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Result records the outcome of composing a single clip.
type Result struct {
	Clip      string
	Output    string
	Detected  bool // foreground used a detected crop, not the centered fallback
	Subtitled bool
	Elapsed   time.Duration
	Err       error
}

// Report accumulates the results of one batch run.
type Report struct {
	RunID   uuid.UUID
	Results []Result
}

func newReport() *Report {
	return &Report{RunID: uuid.New()}
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
}

// Succeeded returns the number of clips that rendered.
func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of clips that did not render.
func (r *Report) Failed() int {
	return len(r.Results) - r.Succeeded()
}

// Render writes a per-clip summary table.
func (r *Report) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Clip", "Crop", "Captions", "Time", "Status"})

	for _, res := range r.Results {
		cropKind := "centered"
		if res.Detected {
			cropKind = "detected"
		}
		captions := "no"
		if res.Subtitled {
			captions = "yes"
		}
		status := text.FgGreen.Sprint("ok")
		if res.Err != nil {
			status = text.FgRed.Sprint(res.Err.Error())
		}
		t.AppendRow(table.Row{
			filepath.Base(res.Clip),
			cropKind,
			captions,
			res.Elapsed.Round(time.Millisecond),
			status,
		})
	}

	t.AppendFooter(table.Row{"", "", "", "", text.Bold.Sprintf("%d ok / %d failed", r.Succeeded(), r.Failed())})
	t.Render()
}
