package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Column is a numeric series aligned to a Series index. Undefined entries are NaN.
type Column []float64

// NewColumn returns a column of n missing values.
func NewColumn(n int) Column {
	c := make(Column, n)
	for i := range c {
		c[i] = math.NaN()
	}
	return c
}

// Defined reports whether entry i holds a value.
func (c Column) Defined(i int) bool {
	return i >= 0 && i < len(c) && !math.IsNaN(c[i])
}

// MarshalJSON encodes missing entries as null.
func (c Column) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('[')
	for i, v := range c {
		if i > 0 {
			b.WriteByte(',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			b.WriteString("null")
			continue
		}
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	b.WriteByte(']')
	return b.Bytes(), nil
}

// UnmarshalJSON decodes null entries as NaN.
func (c *Column) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Column, len(raw))
	for i, v := range raw {
		if v == nil {
			out[i] = math.NaN()
		} else {
			out[i] = *v
		}
	}
	*c = out
	return nil
}

// IndicatorSet holds named columns in the order they were added.
type IndicatorSet struct {
	names   []string
	columns map[string]Column
}

// Set adds or replaces a column.
func (s *IndicatorSet) Set(name string, col Column) {
	if s.columns == nil {
		s.columns = make(map[string]Column)
	}
	if _, ok := s.columns[name]; !ok {
		s.names = append(s.names, name)
	}
	s.columns[name] = col
}

// Get returns the named column.
func (s IndicatorSet) Get(name string) (Column, bool) {
	c, ok := s.columns[name]
	return c, ok
}

// Names returns column names in insertion order.
func (s IndicatorSet) Names() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of columns.
func (s IndicatorSet) Len() int { return len(s.names) }

// MarshalJSON encodes the set as an ordered object.
func (s IndicatorSet) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, name := range s.names {
		if i > 0 {
			b.WriteByte(',')
		}
		key, _ := json.Marshal(name)
		b.Write(key)
		b.WriteByte(':')
		col, err := s.columns[name].MarshalJSON()
		if err != nil {
			return nil, err
		}
		b.Write(col)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// IntradayMetrics are session aggregates for the current calendar day.
type IntradayMetrics struct {
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Range  float64 `json:"range"`
	Volume float64 `json:"volume"`
}

// Quote is the latest price with the change from the previous bar.
type Quote struct {
	Latest    float64 `json:"latest"`
	PrevClose float64 `json:"prev_close"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
}
