package tracker

import (
	"context"
	"fmt"

	"github.com/gcharanteja/unilogger/domain"
)

// Run is a live handle to one tracking run. It embeds the last known server
// record; Refresh replaces the record with the server's current view.
type Run struct {
	client *Client
	domain.Run
}

// Client returns the client this handle logs through.
func (r *Run) Client() *Client {
	return r.client
}

// LogMetric records one numeric metric sample against this run.
func (r *Run) LogMetric(ctx context.Context, name string, value float64, step int64) (*domain.Metric, error) {
	return r.client.LogMetric(ctx, r.ID, name, value, step)
}

// LogMessage records one console-output line against this run.
func (r *Run) LogMessage(ctx context.Context, message string, step int64) (*domain.Metric, error) {
	return r.client.LogMessage(ctx, r.ID, message, step)
}

// Finish marks the run finished and mirrors the result onto the handle.
func (r *Run) Finish(ctx context.Context) (*domain.RunFinishResult, error) {
	res, err := r.client.FinishRun(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	r.Status = res.Status
	r.RuntimeSeconds = &res.RuntimeSeconds
	return res, nil
}

// Refresh replaces the handle's record with the server's current view.
func (r *Run) Refresh(ctx context.Context) error {
	updated, err := r.client.GetRun(ctx, r.ID)
	if err != nil {
		return err
	}
	r.Run = updated.Run
	return nil
}

// Metrics returns every metric record of the run.
func (r *Run) Metrics(ctx context.Context) ([]domain.Metric, error) {
	return r.client.RunMetrics(ctx, r.ID)
}

// AggregatedMetrics returns per-name summaries of the run's numeric metrics.
func (r *Run) AggregatedMetrics(ctx context.Context) (*domain.AggregatedMetrics, error) {
	return r.client.AggregatedMetrics(ctx, r.ID)
}

// QueryMetrics returns the run's metric records matching every filter in q.
func (r *Run) QueryMetrics(ctx context.Context, q domain.MetricQuery) (*domain.MetricQueryResult, error) {
	return r.client.QueryMetrics(ctx, r.ID, q)
}

// UploadFile attaches a local file to the run.
func (r *Run) UploadFile(ctx context.Context, path string, fileType domain.FileType) (*domain.RunFile, error) {
	return r.client.UploadFile(ctx, r.ID, path, fileType)
}

// Files lists the run's attached files.
func (r *Run) Files(ctx context.Context) ([]domain.RunFile, error) {
	return r.client.ListRunFiles(ctx, r.ID)
}

// DownloadFile streams an attached file to outputPath.
func (r *Run) DownloadFile(ctx context.Context, fileID int64, outputPath string) error {
	return r.client.DownloadFile(ctx, r.ID, fileID, outputPath)
}

// Timeseries returns the run's step-ordered series for one metric.
func (r *Run) Timeseries(ctx context.Context, metricName string) (*domain.TimeseriesPlot, error) {
	return r.client.Timeseries(ctx, r.ID, metricName)
}

// Multiplot returns every numeric series of the run.
func (r *Run) Multiplot(ctx context.Context) (*domain.MultiPlot, error) {
	return r.client.Multiplot(ctx, r.ID)
}

// String renders the run for display.
func (r *Run) String() string {
	s := fmt.Sprintf("Run %d: %s (%s)", r.ID, r.Name, r.Status)
	if r.RuntimeSeconds != nil {
		s += fmt.Sprintf(" (%.1fs)", *r.RuntimeSeconds)
	}
	return s
}
