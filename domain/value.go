package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// MetricValue is the value of one metric record: either a float64 for
// numeric metrics or text for console-output records.
type MetricValue struct {
	num    float64
	text   string
	isText bool
}

// NumberValue returns a numeric metric value.
func NumberValue(v float64) MetricValue {
	return MetricValue{num: v}
}

// TextValue returns a text metric value.
func TextValue(s string) MetricValue {
	return MetricValue{text: s, isText: true}
}

// IsText reports whether the value carries text rather than a number.
func (v MetricValue) IsText() bool { return v.isText }

// Float64 returns the numeric value, or 0 for text values.
func (v MetricValue) Float64() float64 {
	if v.isText {
		return 0
	}
	return v.num
}

// Text returns the text value, or "" for numeric values.
func (v MetricValue) Text() string {
	if !v.isText {
		return ""
	}
	return v.text
}

// String renders the value for display.
func (v MetricValue) String() string {
	if v.isText {
		return v.text
	}
	return strconv.FormatFloat(v.num, 'g', -1, 64)
}

// MarshalJSON writes a JSON number or string depending on the kind.
func (v MetricValue) MarshalJSON() ([]byte, error) {
	if v.isText {
		return json.Marshal(v.text)
	}
	return json.Marshal(v.num)
}

// UnmarshalJSON accepts a JSON number or string; anything else is an error.
// Null is rejected: every metric record carries a value.
func (v *MetricValue) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = TextValue(s)
		return nil
	}
	if string(data) == "null" {
		return fmt.Errorf("metric value must be a number or string, got null")
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("metric value must be a number or string: %w", err)
	}
	*v = NumberValue(n)
	return nil
}
