package tracker

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/gcharanteja/unilogger/domain"
)

// consoleMetricName is the reserved metric name for bridged log records.
const consoleMetricName = "console_output"

// InitRun creates a run inside a project and returns a live handle to it.
// Nil config and tags are normalized so the server always receives an object
// and an array.
func (c *Client) InitRun(ctx context.Context, projectID int64, req domain.InitRunRequest) (*Run, error) {
	if req.Name == "" {
		return nil, errors.New("run name is required")
	}
	if req.Config == nil {
		req.Config = domain.NewRunConfig()
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}
	var rec domain.Run
	if err := c.post(ctx, fmt.Sprintf("/projects/%d/runs/init", projectID), req, &rec); err != nil {
		return nil, err
	}
	return &Run{client: c, Run: rec}, nil
}

// GetRun fetches a run by id and returns a live handle to it.
func (c *Client) GetRun(ctx context.Context, runID int64) (*Run, error) {
	var rec domain.Run
	if err := c.get(ctx, fmt.Sprintf("/runs/%d", runID), nil, &rec); err != nil {
		return nil, err
	}
	return &Run{client: c, Run: rec}, nil
}

// FinishRun marks a run finished. Finishing an already finished run is not
// an error; the server answers with the recorded runtime.
func (c *Client) FinishRun(ctx context.Context, runID int64) (*domain.RunFinishResult, error) {
	var res domain.RunFinishResult
	if err := c.post(ctx, fmt.Sprintf("/runs/%d/finish", runID), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// LogMetric records one numeric metric sample.
func (c *Client) LogMetric(ctx context.Context, runID int64, name string, value float64, step int64) (*domain.Metric, error) {
	req := domain.LogMetricRequest{Name: name, Value: domain.NumberValue(value), Step: step}
	var m domain.Metric
	if err := c.post(ctx, fmt.Sprintf("/runs/%d/log", runID), req, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// LogMessage records one console-output line as a text metric.
func (c *Client) LogMessage(ctx context.Context, runID int64, message string, step int64) (*domain.Metric, error) {
	req := domain.LogMetricRequest{Name: consoleMetricName, Value: domain.TextValue(message), Step: step}
	var m domain.Metric
	if err := c.post(ctx, fmt.Sprintf("/runs/%d/log", runID), req, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// RunMetrics returns every metric record of a run.
func (c *Client) RunMetrics(ctx context.Context, runID int64) ([]domain.Metric, error) {
	var metrics []domain.Metric
	if err := c.get(ctx, fmt.Sprintf("/runs/%d/metrics", runID), nil, &metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

// AggregatedMetrics returns per-name summaries of a run's numeric metrics.
func (c *Client) AggregatedMetrics(ctx context.Context, runID int64) (*domain.AggregatedMetrics, error) {
	var agg domain.AggregatedMetrics
	if err := c.get(ctx, fmt.Sprintf("/runs/%d/metrics/aggregated", runID), nil, &agg); err != nil {
		return nil, err
	}
	return &agg, nil
}

// QueryMetrics returns the run's metric records matching every filter set in
// q.
func (c *Client) QueryMetrics(ctx context.Context, runID int64, q domain.MetricQuery) (*domain.MetricQueryResult, error) {
	params := url.Values{}
	if q.MetricName != "" {
		params.Set("metric_name", q.MetricName)
	}
	if q.MinValue != nil {
		params.Set("min_value", strconv.FormatFloat(*q.MinValue, 'f', -1, 64))
	}
	if q.MaxValue != nil {
		params.Set("max_value", strconv.FormatFloat(*q.MaxValue, 'f', -1, 64))
	}
	if q.MinStep != nil {
		params.Set("min_step", strconv.FormatInt(*q.MinStep, 10))
	}
	if q.MaxStep != nil {
		params.Set("max_step", strconv.FormatInt(*q.MaxStep, 10))
	}
	var res domain.MetricQueryResult
	if err := c.get(ctx, fmt.Sprintf("/runs/%d/metrics/query", runID), params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
