// Package telemetry records landing diagnostics and writes them as CSV.
package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// LandingRecord is one airborne to grounded transition.
type LandingRecord struct {
	Tick     uint64  `csv:"tick"`
	Time     float64 `csv:"time"` // virtual seconds
	Quality  string  `csv:"quality"`
	Score    float32 `csv:"score"`
	Speed    float32 `csv:"speed"`
	Distance float32 `csv:"distance"` // forward distance travelled
}

// Summary aggregates a run.
type Summary struct {
	Landings  int
	ByQuality map[string]int
	Obstacles int
}

// Recorder collects records in memory. A nil Recorder drops everything.
type Recorder struct {
	landings  []LandingRecord
	obstacles int
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordLanding appends a landing.
func (r *Recorder) RecordLanding(rec LandingRecord) {
	if r == nil {
		return
	}
	r.landings = append(r.landings, rec)
}

// RecordObstacleHit counts an obstacle contact.
func (r *Recorder) RecordObstacleHit() {
	if r == nil {
		return
	}
	r.obstacles++
}

// Landings returns the recorded landings.
func (r *Recorder) Landings() []LandingRecord {
	if r == nil {
		return nil
	}
	return r.landings
}

// Summary aggregates what has been recorded so far.
func (r *Recorder) Summary() Summary {
	s := Summary{ByQuality: make(map[string]int)}
	if r == nil {
		return s
	}
	s.Landings = len(r.landings)
	s.Obstacles = r.obstacles
	for _, l := range r.landings {
		s.ByQuality[l.Quality]++
	}
	return s
}

// WriteCSV writes the landings with a header row.
func (r *Recorder) WriteCSV(w io.Writer) error {
	records := r.Landings()
	if records == nil {
		records = []LandingRecord{}
	}
	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("writing landings: %w", err)
	}
	return nil
}

// WriteCSVFile writes the landings to path, creating parent directories.
func (r *Recorder) WriteCSVFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating telemetry directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := r.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
