package app

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"salondesk/domain/ticket"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/montanaflynn/stats"
	gstat "gonum.org/v1/gonum/stat"
)

// DayCount is the number of tickets filed on one day
type DayCount struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

// Bar is one column of the tickets-per-day chart
type Bar struct {
	Label     string  `json:"label"`
	Count     int     `json:"count"`
	Height    float64 `json:"height"` // percent of the busiest day
	Highlight bool    `json:"highlight"`
}

// Report summarizes ticket volume over time
type Report struct {
	Total   int        `json:"total"`
	Skipped int        `json:"skipped"` // tickets whose date did not parse
	PerDay  []DayCount `json:"per_day"`
	Top     []DayCount `json:"top"`

	Busiest  DayCount `json:"busiest"`
	Quietest DayCount `json:"quietest"`
	Mean     float64  `json:"mean"`
	Median   float64  `json:"median"`

	// Trend is the least-squares slope in tickets per day
	Trend     float64 `json:"trend"`
	Intercept float64 `json:"intercept"`

	TrainingMatches int `json:"training_matches"`
	Digits16Matches int `json:"digits16_matches"`

	Bars []Bar `json:"bars"`
}

const topDays = 5

// AnalysisService reports ticket volume per day
type AnalysisService struct {
	catalog *Catalog
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(catalog *Catalog) *AnalysisService {
	return &AnalysisService{catalog: catalog}
}

// Load analyzes the selected sheets plus local tickets
func (s *AnalysisService) Load(ctx context.Context, sheets []string) (*Report, error) {
	all, err := s.catalog.All(ctx, sheets)
	if err != nil {
		return nil, err
	}
	return Analyze(all), nil
}

// Analyze groups tickets by their Date and computes volume statistics
func Analyze(tickets []ticket.Ticket) *Report {
	r := &Report{Total: len(tickets)}

	byDay := make(map[time.Time]int)
	for _, t := range tickets {
		if t.InTraining {
			r.TrainingMatches++
		}
		if t.Has16Digits {
			r.Digits16Matches++
		}
		d, ok := ticket.ParseDate(t.Date)
		if !ok {
			r.Skipped++
			continue
		}
		byDay[startOfDay(d)]++
	}
	if len(byDay) == 0 {
		return r
	}

	for day, n := range byDay {
		r.PerDay = append(r.PerDay, DayCount{Day: day, Count: n})
	}
	sort.Slice(r.PerDay, func(i, j int) bool { return r.PerDay[i].Day.Before(r.PerDay[j].Day) })

	counts := make(stats.Float64Data, len(r.PerDay))
	xs := make([]float64, len(r.PerDay))
	first := r.PerDay[0].Day
	r.Busiest, r.Quietest = r.PerDay[0], r.PerDay[0]
	for i, dc := range r.PerDay {
		counts[i] = float64(dc.Count)
		xs[i] = math.Round(dc.Day.Sub(first).Hours() / 24)
		if dc.Count > r.Busiest.Count {
			r.Busiest = dc
		}
		if dc.Count < r.Quietest.Count {
			r.Quietest = dc
		}
	}
	r.Mean, _ = stats.Mean(counts)
	r.Median, _ = stats.Median(counts)
	if len(r.PerDay) > 1 {
		r.Intercept, r.Trend = gstat.LinearRegression(xs, counts, nil, false)
	}

	top := append([]DayCount(nil), r.PerDay...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Count > top[j].Count })
	if len(top) > topDays {
		top = top[:topDays]
	}
	r.Top = top

	for _, dc := range r.PerDay {
		r.Bars = append(r.Bars, Bar{
			Label:     dc.Day.Format("02/01"),
			Count:     dc.Count,
			Height:    math.Round(float64(dc.Count)/float64(r.Busiest.Count)*1000) / 10,
			Highlight: dc.Day.Equal(r.Busiest.Day),
		})
	}
	return r
}

// Markdown renders the report as the text shown on the Reports page and by crmctl analyze
func Markdown(r *Report) string {
	var b strings.Builder
	b.WriteString("# Ticket analysis\n\n")
	fmt.Fprintf(&b, "- Total tickets: **%d**\n", r.Total)
	fmt.Fprintf(&b, "- Days with data: **%d**\n", len(r.PerDay))
	if r.Skipped > 0 {
		fmt.Fprintf(&b, "- Tickets without a readable date: %d\n", r.Skipped)
	}
	fmt.Fprintf(&b, "- Training matches: %d\n", r.TrainingMatches)
	fmt.Fprintf(&b, "- 16 Digits matches: %d\n", r.Digits16Matches)

	if len(r.PerDay) == 0 {
		b.WriteString("\nNo dated tickets to analyze.\n")
		return b.String()
	}

	b.WriteString("\n## Busiest day\n\n")
	fmt.Fprintf(&b, "%s with **%d** tickets.\n", r.Busiest.Day.Format("02/01/2006"), r.Busiest.Count)

	b.WriteString("\n## Top 5 days\n\n| Day | Tickets |\n|---|---|\n")
	for _, dc := range r.Top {
		fmt.Fprintf(&b, "| %s | %d |\n", dc.Day.Format("02/01/2006"), dc.Count)
	}

	b.WriteString("\n## Overview\n\n")
	fmt.Fprintf(&b, "- Mean tickets/day: %.2f\n", r.Mean)
	fmt.Fprintf(&b, "- Median tickets/day: %.2f\n", r.Median)
	fmt.Fprintf(&b, "- Quietest day: %s (%d tickets)\n", r.Quietest.Day.Format("02/01/2006"), r.Quietest.Count)
	fmt.Fprintf(&b, "- Trend: %+.2f tickets/day\n", r.Trend)
	return b.String()
}

// RenderHTML converts report markdown to HTML
func RenderHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer)
}
