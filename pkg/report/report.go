package report

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Report is one build's worth of parsed records, grouped per recipe.
// Reports are immutable once created.
type Report struct {
	ID          string    `json:"id"`
	Project     string    `json:"project"`
	Build       string    `json:"build,omitempty"` // CI build number or commit SHA
	GeneratedAt time.Time `json:"generated_at"`
	Recipes     []*Recipe `json:"recipes"`
}

// NewReport creates an empty report with a fresh ID.
func NewReport(project, build string) *Report {
	return &Report{
		ID:          uuid.New().String(),
		Project:     project,
		Build:       build,
		GeneratedAt: time.Now().UTC(),
	}
}

// Recipe returns the named recipe, or nil.
func (r *Report) Recipe(name string) *Recipe {
	for _, rec := range r.Recipes {
		if rec.Name == name {
			return rec
		}
	}
	return nil
}

// Names returns the recipe names in sorted order.
func (r *Report) Names() []string {
	names := make([]string, 0, len(r.Recipes))
	for _, rec := range r.Recipes {
		names = append(names, rec.Name)
	}
	sort.Strings(names)
	return names
}

// Merged combines every recipe into one project-level container.
func (r *Report) Merged() Container {
	containers := make([]Container, 0, len(r.Recipes))
	for _, rec := range r.Recipes {
		containers = append(containers, rec)
	}
	return Merge(containers...)
}

// Containers returns the recipes keyed by name.
func (r *Report) Containers() map[string]Container {
	out := make(map[string]Container, len(r.Recipes))
	for _, rec := range r.Recipes {
		out[rec.Name] = rec
	}
	return out
}
