package workflow

import (
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"

	"ytbpm/internal/utils"
)

// Mode is the branch a run took.
type Mode string

const (
	ModeSingle   Mode = "single"
	ModePlaylist Mode = "playlist"
)

// Status is the outcome of one item.
type Status string

const (
	StatusProcessed Status = "processed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// ItemResult records what happened to one video.
type ItemResult struct {
	Index  int
	ID     string
	Title  string
	Path   string
	Status Status
	BPM    int
	Genre  string
	Err    error
}

// csvItem is one line of the CSV report.
type csvItem struct {
	Index  int    `csv:"#"`
	ID     string `csv:"Video ID"`
	Title  string `csv:"Title"`
	Path   string `csv:"File"`
	Status Status `csv:"Status"`
	BPM    string `csv:"BPM"`
	Genre  string `csv:"Genre"`
	Err    error  `csv:"Error"`
}

// bpmText is the BPM column of a result. Only processed items have one.
func (res ItemResult) bpmText() string {
	if res.Status != StatusProcessed {
		return ""
	}
	return strconv.Itoa(res.BPM)
}

// Report is the outcome of one run.
type Report struct {
	RunID      string
	URL        string
	Mode       Mode
	Overwrite  bool
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []ItemResult
}

// Counts tallies results by status.
type Counts struct {
	Processed int
	Skipped   int
	Failed    int
}

func newReport(req Request, now time.Time) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		URL:       req.URL,
		Overwrite: req.Overwrite,
		StartedAt: now,
	}
}

// Counts returns the number of results in each status.
func (r *Report) Counts() Counts {
	var c Counts
	for _, res := range r.Results {
		switch res.Status {
		case StatusProcessed:
			c.Processed++
		case StatusSkipped:
			c.Skipped++
		case StatusFailed:
			c.Failed++
		}
	}
	return c
}

// ExitCode is the process exit status for the run. A failed single video
// is 1; failed playlist items never make it non-zero.
func (r *Report) ExitCode() int {
	if r.Mode == ModeSingle && r.Counts().Failed > 0 {
		return 1
	}
	return 0
}

// Duration is how long the run took.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// SummaryHeader is the header of Rows.
var SummaryHeader = []string{"#", "Title", "Status", "BPM", "Genre"}

// Rows returns one table row per result.
func (r *Report) Rows() [][]string {
	rows := make([][]string, 0, len(r.Results))
	for _, res := range r.Results {
		title := res.Title
		if title == "" {
			title = res.ID
		}
		rows = append(rows, []string{strconv.Itoa(res.Index), title, string(res.Status), res.bpmText(), res.Genre})
	}
	return rows
}

// WriteCSV exports the per-item results to a CSV file.
func (r *Report) WriteCSV(path string) error {
	items := make([]csvItem, 0, len(r.Results))
	for _, res := range r.Results {
		items = append(items, csvItem{
			Index:  res.Index,
			ID:     res.ID,
			Title:  res.Title,
			Path:   res.Path,
			Status: res.Status,
			BPM:    res.bpmText(),
			Genre:  res.Genre,
			Err:    res.Err,
		})
	}
	headers := utils.StructToCsvHeader(reflect.TypeOf(csvItem{}))
	return utils.WriteToCsvFile(path, headers, items)
}
