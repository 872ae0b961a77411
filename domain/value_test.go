package domain

import (
	"encoding/json"
	"testing"
)

func TestMetricValueNumberJSON(t *testing.T) {
	data, err := json.Marshal(NumberValue(0.37))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != "0.37" {
		t.Errorf("expected 0.37, got %s", data)
	}

	var v MetricValue
	if err := json.Unmarshal([]byte("0.37"), &v); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if v.IsText() || v.Float64() != 0.37 {
		t.Errorf("expected numeric 0.37, got %v", v)
	}
}

func TestMetricValueTextJSON(t *testing.T) {
	data, err := json.Marshal(TextValue("INFO: training started"))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `"INFO: training started"` {
		t.Errorf("unexpected encoding: %s", data)
	}

	var v MetricValue
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !v.IsText() || v.Text() != "INFO: training started" {
		t.Errorf("expected text value, got %v", v)
	}
}

func TestMetricValueRejectsOtherKinds(t *testing.T) {
	var v MetricValue
	for _, bad := range []string{"true", "null", `{"a":1}`, "[1]"} {
		if err := json.Unmarshal([]byte(bad), &v); err == nil {
			t.Errorf("expected error for %s", bad)
		}
	}
}

func TestMetricInRecordJSON(t *testing.T) {
	src := `{"id":7,"run_id":42,"name":"loss","value":0.37,"step":3,"created_at":"2026-01-23T10:00:00Z"}`
	var m Metric
	if err := json.Unmarshal([]byte(src), &m); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if m.Name != "loss" || m.Value.Float64() != 0.37 || m.Step != 3 {
		t.Errorf("unexpected metric: %+v", m)
	}
}
