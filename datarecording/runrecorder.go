package datarecording

import (
	"os"
	"strings"
	"time"
)

// TableRunInfo holds the properties of the run that produced a database.
const TableRunInfo = "run_info"

const timeLayout = "2006-01-02 15:04:05.000000000"

// RunInfo is one property of a run.
type RunInfo struct {
	Property string
	Value    string
}

// RunRecorder collects the properties of a run and writes them when the run
// ends.
type RunRecorder struct {
	recorder DataRecorder
	entries  []RunInfo
}

// NewRunRecorder creates the run_info table in the recorder.
func NewRunRecorder(recorder DataRecorder) *RunRecorder {
	recorder.CreateTable(TableRunInfo, RunInfo{})

	return &RunRecorder{recorder: recorder}
}

// Start notes the start time, the command line and the working directory.
func (r *RunRecorder) Start() {
	r.Add("Start Time", time.Now().Format(timeLayout))
	r.Add("Command", strings.Join(os.Args, " "))

	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	r.Add("Working Directory", cwd)
}

// Add notes a property.
func (r *RunRecorder) Add(property, value string) {
	r.entries = append(r.entries, RunInfo{property, value})
}

// End writes the noted properties and the end time.
func (r *RunRecorder) End() {
	r.Add("End Time", time.Now().Format(timeLayout))

	for _, e := range r.entries {
		r.recorder.InsertData(TableRunInfo, e)
	}

	r.entries = nil

	r.recorder.Flush()
}
