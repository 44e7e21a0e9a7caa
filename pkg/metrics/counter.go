// Package metrics implements the Recipescope quality evaluation engine.
// Category evaluators read records from a report.Container, count a
// denominator and numerator, and compare the resulting ratio against a
// threshold. Metrics rolls the categories up into one verdict; statistics
// and qualified-recipe queries summarize many recipes at once.
package metrics

import "encoding/json"

// Counter holds a denominator and numerator. The numerator is not bounded by
// the denominator: a code violation counter with violations but no counted
// lines reports (0, N) with ratio 0.
type Counter struct {
	denominator int
	numerator   int
}

// NewCounter returns a counter with the given values.
func NewCounter(denominator, numerator int) Counter {
	return Counter{denominator: denominator, numerator: numerator}
}

func (c Counter) Denominator() int { return c.denominator }
func (c Counter) Numerator() int   { return c.numerator }

// Ratio returns numerator/denominator, or 0 when the denominator is 0.
func (c Counter) Ratio() float64 {
	if c.denominator == 0 {
		return 0
	}
	return float64(c.numerator) / float64(c.denominator)
}

// Add sums another counter's fields into c.
func (c *Counter) Add(other Counter) {
	c.denominator += other.denominator
	c.numerator += other.numerator
}

// Increment adds the given deltas.
func (c *Counter) Increment(denominator, numerator int) {
	c.denominator += denominator
	c.numerator += numerator
}

// Reset zeroes both fields.
func (c *Counter) Reset() {
	c.denominator = 0
	c.numerator = 0
}

type counterJSON struct {
	Denominator int     `json:"denominator"`
	Numerator   int     `json:"numerator"`
	Ratio       float64 `json:"ratio"`
}

func (c Counter) MarshalJSON() ([]byte, error) {
	return json.Marshal(counterJSON{
		Denominator: c.denominator,
		Numerator:   c.numerator,
		Ratio:       c.Ratio(),
	})
}
