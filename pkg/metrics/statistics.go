package metrics

import (
	"encoding/json"
	"sort"

	"github.com/recipescope/recipescope/pkg/report"
)

// Statistic summarizes one category's ratio across recipes.
type Statistic struct {
	Count   int     `json:"count"` // recipes where the category was available
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

type runningStatistic struct {
	Statistic
	sum float64
}

func (s *runningStatistic) add(ratio float64) {
	if s.Count == 0 || ratio < s.Min {
		s.Min = ratio
	}
	if s.Count == 0 || ratio > s.Max {
		s.Max = ratio
	}
	s.Count++
	s.sum += ratio
	s.Average = s.sum / float64(s.Count)
}

// MetricStatistics holds the min, max and average ratio per category over a
// set of recipes. Recipes where a category is unavailable are left out of
// that category entirely.
type MetricStatistics struct {
	criteria Criteria
	stats    map[Category]*runningStatistic
}

func NewMetricStatistics(criteria Criteria) *MetricStatistics {
	s := &MetricStatistics{criteria: criteria}
	s.clear()
	return s
}

func (s *MetricStatistics) clear() {
	s.stats = make(map[Category]*runningStatistic, len(Categories()))
	for _, cat := range Categories() {
		s.stats[cat] = &runningStatistic{}
	}
}

// Parse evaluates every recipe with fresh metrics and rebuilds the
// statistics from scratch.
func (s *MetricStatistics) Parse(recipes map[string]report.Container) {
	names := make([]string, 0, len(recipes))
	for name := range recipes {
		names = append(names, name)
	}
	sort.Strings(names)

	all := make([]*Metrics, 0, len(names))
	for _, name := range names {
		m := NewMetrics(s.criteria)
		m.Parse(recipes[name])
		all = append(all, m)
	}
	s.ParseMetrics(all)
}

// ParseMetrics rebuilds the statistics from metrics that were already parsed.
func (s *MetricStatistics) ParseMetrics(all []*Metrics) {
	s.clear()
	for _, m := range all {
		for _, cat := range Categories() {
			e := m.Get(cat)
			if !e.Available() {
				continue
			}
			s.stats[cat].add(e.Ratio())
		}
	}
}

// Get returns the statistic for cat. A category no recipe reported has a
// zero Count.
func (s *MetricStatistics) Get(cat Category) Statistic {
	if rs, ok := s.stats[cat]; ok {
		return rs.Statistic
	}
	return Statistic{}
}

func (s *MetricStatistics) MarshalJSON() ([]byte, error) {
	out := make(map[Category]Statistic, len(s.stats))
	for cat, rs := range s.stats {
		out[cat] = rs.Statistic
	}
	return json.Marshal(out)
}
