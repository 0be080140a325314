// Package dashboard builds the view-models the monitoring page renders:
// chart series, budget joins and paginated tables.
package dashboard

import (
	"math"

	"monev/internal/core"
)

// Series names of the budget chart.
const (
	SeriesAnggaran  = "Anggaran"
	SeriesRealisasi = "Realisasi"
)

// minBarWidth is the smallest width, in percent, drawn for a non-zero value.
const minBarWidth = 2.0

// Dataset is one named series aligned with ChartData.Labels.
type Dataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// ChartData is the category axis plus one dataset per series.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// BuildActionChart groups convergence actions by region. Each canonical action
// label becomes one series; a region without a score for a label gets 0. When
// a region and label pair appears more than once the later record wins.
func BuildActionChart(actions []core.ConvergenceAction) ChartData {
	var regions []string
	scores := make(map[string]map[string]float64)

	for _, a := range actions {
		region := core.RegionOf(a.Budget)
		byLabel, seen := scores[region]
		if !seen {
			byLabel = make(map[string]float64)
			scores[region] = byLabel
			regions = append(regions, region)
		}
		byLabel[a.Aksi] = a.Score()
	}

	chart := ChartData{
		Labels:   regions,
		Datasets: make([]Dataset, 0, len(core.ActionLabels)),
	}
	if chart.Labels == nil {
		chart.Labels = []string{}
	}
	for _, label := range core.ActionLabels {
		data := make([]float64, len(regions))
		for i, region := range regions {
			data[i] = scores[region][label]
		}
		chart.Datasets = append(chart.Datasets, Dataset{Label: label, Data: data})
	}
	return chart
}

// BuildBudgetChart projects each budget onto its region label with an
// Anggaran and a Realisasi series. No grouping takes place.
func BuildBudgetChart(budgets []core.Budget) ChartData {
	labels := make([]string, len(budgets))
	anggaran := make([]float64, len(budgets))
	realisasi := make([]float64, len(budgets))
	for i, b := range budgets {
		labels[i] = b.Region()
		anggaran[i] = float64(b.Anggaran)
		realisasi[i] = float64(b.Realisasi)
	}
	return ChartData{
		Labels: labels,
		Datasets: []Dataset{
			{Label: SeriesAnggaran, Data: anggaran},
			{Label: SeriesRealisasi, Data: realisasi},
		},
	}
}

// Bar is one drawn bar of a BarChart.
type Bar struct {
	Series  string
	Color   string
	Value   float64
	Display string
	Width   float64 // percent of the largest value
}

// BarGroup holds the bars of one category.
type BarGroup struct {
	Label string
	Bars  []Bar
}

// LegendEntry pairs a series with its color.
type LegendEntry struct {
	Label string
	Color string
}

// BarChart is the HTML-ready form of ChartData.
type BarChart struct {
	Title  string
	Legend []LegendEntry
	Groups []BarGroup
	Empty  bool
}

// Palette colors series in order; it wraps when there are more series.
var Palette = []string{
	"#2563eb", "#16a34a", "#dc2626", "#d97706",
	"#7c3aed", "#0891b2", "#db2777", "#65a30d",
}

// BarWidth returns value as a percentage of max. Positive values are drawn at
// least minBarWidth wide so they stay visible.
func BarWidth(value, max float64) float64 {
	if value <= 0 || max <= 0 {
		return 0
	}
	w := value / max * 100
	if w < minBarWidth {
		return minBarWidth
	}
	return math.Round(w*10) / 10
}

// Bars lays out data for HTML rendering. format renders each value's label.
func Bars(title string, data ChartData, format func(float64) string) BarChart {
	chart := BarChart{Title: title, Empty: len(data.Labels) == 0}

	max := 0.0
	for i, ds := range data.Datasets {
		chart.Legend = append(chart.Legend, LegendEntry{Label: ds.Label, Color: Palette[i%len(Palette)]})
		for _, v := range ds.Data {
			if v > max {
				max = v
			}
		}
	}

	for li, label := range data.Labels {
		group := BarGroup{Label: label}
		for di, ds := range data.Datasets {
			var v float64
			if li < len(ds.Data) {
				v = ds.Data[li]
			}
			group.Bars = append(group.Bars, Bar{
				Series:  ds.Label,
				Color:   Palette[di%len(Palette)],
				Value:   v,
				Display: format(v),
				Width:   BarWidth(v, max),
			})
		}
		chart.Groups = append(chart.Groups, group)
	}
	return chart
}

// RupiahLabel formats chart values as currency.
func RupiahLabel(v float64) string {
	return core.FormatRupiah(int64(math.Round(v)))
}

// ScoreLabel formats chart values as scores.
func ScoreLabel(v float64) string {
	return core.FormatScore(v)
}
