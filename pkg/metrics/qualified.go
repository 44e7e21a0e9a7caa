package metrics

import (
	"encoding/json"
	"sort"

	"github.com/recipescope/recipescope/pkg/report"
)

// CategoryCount is the number of recipes where a category was available,
// and how many of those qualified.
type CategoryCount struct {
	Available int `json:"available"`
	Qualified int `json:"qualified"`
}

// QualifiedRecipeCounter counts available and qualified recipes per category
// and overall.
type QualifiedRecipeCounter struct {
	criteria Criteria
	counts   map[Category]CategoryCount
	overall  CategoryCount
	tested   int
	recipes  int
}

func NewQualifiedRecipeCounter(criteria Criteria) *QualifiedRecipeCounter {
	return &QualifiedRecipeCounter{
		criteria: criteria,
		counts:   make(map[Category]CategoryCount),
	}
}

// Parse replaces the counts with those of recipes. Each category is checked
// with a fresh evaluator per recipe.
func (q *QualifiedRecipeCounter) Parse(recipes map[string]report.Container) {
	q.counts = make(map[Category]CategoryCount, len(Categories()))
	q.overall = CategoryCount{}
	q.tested = 0
	q.recipes = len(recipes)

	for _, c := range recipes {
		for _, cat := range Categories() {
			e := NewCategoryEvaluator(cat, q.criteria)
			e.Parse(c)
			if !e.Available() {
				continue
			}
			cc := q.counts[cat]
			cc.Available++
			if e.Qualified() {
				cc.Qualified++
			}
			q.counts[cat] = cc
			if cat == CategoryTests {
				q.tested++
			}
		}

		m := NewMetrics(q.criteria)
		m.Parse(c)
		if m.Available() {
			q.overall.Available++
			if m.Qualified() {
				q.overall.Qualified++
			}
		}
	}
}

func (q *QualifiedRecipeCounter) Get(cat Category) CategoryCount { return q.counts[cat] }

// Overall counts recipes by their Metrics verdict.
func (q *QualifiedRecipeCounter) Overall() CategoryCount { return q.overall }

// Tested returns the number of recipes with test results.
func (q *QualifiedRecipeCounter) Tested() int { return q.tested }

// Recipes returns the number of recipes parsed.
func (q *QualifiedRecipeCounter) Recipes() int { return q.recipes }

func (q *QualifiedRecipeCounter) MarshalJSON() ([]byte, error) {
	categories := make(map[Category]CategoryCount, len(Categories()))
	for _, cat := range Categories() {
		categories[cat] = q.counts[cat]
	}
	return json.Marshal(struct {
		Recipes    int                        `json:"recipes"`
		Tested     int                        `json:"tested"`
		Overall    CategoryCount              `json:"overall"`
		Categories map[Category]CategoryCount `json:"categories"`
	}{q.recipes, q.tested, q.overall, categories})
}

// QualifiedRecipes filters a recipe collection by verdict. It keeps a
// reference to the collection and evaluates every recipe again on each
// query, so later changes to the collection are reflected.
type QualifiedRecipes struct {
	recipes  map[string]report.Container
	criteria Criteria
}

func NewQualifiedRecipes(recipes map[string]report.Container, criteria Criteria) *QualifiedRecipes {
	return &QualifiedRecipes{recipes: recipes, criteria: criteria}
}

// Qualified returns the recipes whose overall metrics qualify.
func (q *QualifiedRecipes) Qualified() []string {
	return q.filter(func(m *Metrics) bool { return m.Qualified() })
}

// Unqualified returns the recipes with data whose overall metrics do not
// qualify. Recipes without any available category are in neither list.
func (q *QualifiedRecipes) Unqualified() []string {
	return q.filter(func(m *Metrics) bool { return m.Available() && !m.Qualified() })
}

// QualifiedBy returns the recipes qualified for cat.
func (q *QualifiedRecipes) QualifiedBy(cat Category) []string {
	return q.filter(func(m *Metrics) bool {
		e := m.Get(cat)
		return e != nil && e.Qualified()
	})
}

// UnqualifiedBy returns the recipes where cat is available but not qualified.
func (q *QualifiedRecipes) UnqualifiedBy(cat Category) []string {
	return q.filter(func(m *Metrics) bool {
		e := m.Get(cat)
		return e != nil && e.Available() && !e.Qualified()
	})
}

// Available returns the recipes where cat is available.
func (q *QualifiedRecipes) Available(cat Category) []string {
	return q.filter(func(m *Metrics) bool {
		e := m.Get(cat)
		return e != nil && e.Available()
	})
}

// Select combines the filters above. An empty cat selects on the overall
// metrics; a nil qualified selects every recipe, or with cat set every
// recipe where cat is available.
func (q *QualifiedRecipes) Select(cat Category, qualified *bool) []string {
	switch {
	case cat == "" && qualified == nil:
		return q.filter(func(*Metrics) bool { return true })
	case cat == "" && *qualified:
		return q.Qualified()
	case cat == "":
		return q.Unqualified()
	case qualified == nil:
		return q.Available(cat)
	case *qualified:
		return q.QualifiedBy(cat)
	default:
		return q.UnqualifiedBy(cat)
	}
}

func (q *QualifiedRecipes) filter(keep func(*Metrics) bool) []string {
	out := []string{}
	for name, c := range q.recipes {
		m := NewMetrics(q.criteria)
		m.Parse(c)
		if keep(m) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
