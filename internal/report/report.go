// Package report renders and stores the area tables of classification runs.
package report

import (
	"time"

	"forest-cover-benchmark/internal/classes"
	"forest-cover-benchmark/internal/pipeline"
)

// ClassArea is one row of an area table.
type ClassArea struct {
	Class       int     `json:"class"`
	Description string  `json:"description"`
	Pixels      int64   `json:"pixels,omitempty"`
	Hectares    float64 `json:"hectares"`
	Share       float64 `json:"share_pct"`
}

// Summary is the serialisable view of a run.
type Summary struct {
	RunID          string      `json:"run_id"`
	Project        string      `json:"project,omitempty"`
	Start          string      `json:"start"`
	Mid            string      `json:"mid"`
	End            string      `json:"end"`
	Output         string      `json:"output"`
	ResolutionX    float64     `json:"resolution_x"`
	ResolutionY    float64     `json:"resolution_y"`
	PixelAreaHa    float64     `json:"pixel_area_ha"`
	Unclassified   int64       `json:"unclassified_pixels"`
	Transitional   []ClassArea `json:"transitional"`
	Interpreted    []ClassArea `json:"interpreted"`
	TotalHectares  float64     `json:"total_hectares"`
	FinishedAt     time.Time   `json:"finished_at"`
	DurationMillis int64       `json:"duration_ms"`
}

// Summarize flattens a run result into ordered class rows.
func Summarize(r *pipeline.Result) Summary {
	t := r.Tables
	scheme := t.Scheme()

	s := Summary{
		RunID:          r.RunID,
		Project:        r.Project,
		Start:          r.Request.Start,
		Mid:            r.Request.Mid,
		End:            r.Request.End,
		Output:         r.OutputPath,
		ResolutionX:    r.Resolution.X,
		ResolutionY:    r.Resolution.Y,
		PixelAreaHa:    t.PixelAreaHa,
		Unclassified:   t.UnclassifiedPixels(),
		TotalHectares:  t.TransitionalTotal(),
		FinishedAt:     r.FinishedAt,
		DurationMillis: r.FinishedAt.Sub(r.StartedAt).Milliseconds(),
	}

	shares := t.Shares()
	for k, c := range classes.Transitions() {
		s.Transitional = append(s.Transitional, ClassArea{
			Class:       int(c),
			Description: scheme.DescribeTransition(c),
			Pixels:      t.Counts[c],
			Hectares:    t.Transitional[c],
			Share:       shares[k],
		})
	}
	for _, i := range classes.InterpretedClasses() {
		var share float64
		for _, c := range scheme.Members(i) {
			share += shares[c-1]
		}
		s.Interpreted = append(s.Interpreted, ClassArea{
			Class:       int(i),
			Description: scheme.DescribeInterpreted(i),
			Pixels:      t.InterpretedPixels(i),
			Hectares:    t.Interpreted[i],
			Share:       share,
		})
	}
	return s
}
