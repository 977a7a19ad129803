package report

import "strconv"

// Point is one labelled value of a category series.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Series is an ordered, label-keyed list of values. Setting a label that is
// already present replaces its value and keeps its original position.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// NewSeries returns an empty named series.
func NewSeries(name string) Series {
	return Series{Name: name, Points: []Point{}}
}

// Set adds or replaces the value for label.
func (s *Series) Set(label string, value float64) {
	for i := range s.Points {
		if s.Points[i].Label == label {
			s.Points[i].Value = value
			return
		}
	}
	s.Points = append(s.Points, Point{Label: label, Value: value})
}

// Value returns the value stored for label.
func (s Series) Value(label string) (float64, bool) {
	for _, p := range s.Points {
		if p.Label == label {
			return p.Value, true
		}
	}
	return 0, false
}

func (s Series) Len() int { return len(s.Points) }

// Labels returns the category labels in order.
func (s Series) Labels() []string {
	out := make([]string, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Label
	}
	return out
}

// Max returns the largest value, or 0 for an empty series.
func (s Series) Max() float64 {
	var m float64
	for i, p := range s.Points {
		if i == 0 || p.Value > m {
			m = p.Value
		}
	}
	return m
}

// Sum adds all values of the series.
func (s Series) Sum() float64 {
	var total float64
	for _, p := range s.Points {
		total += p.Value
	}
	return total
}

// formatValue prints a value the way data labels show it: integers
// without a fraction, everything else with the shortest exact form.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
