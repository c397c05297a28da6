package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	dashboardCommon "github.com/iulianpascalau/load-dashboard/services/dashboard/common"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/tidwall/gjson"
)

const maxResponseSize = 1 << 20

var log = logger.GetOrCreate("reporter")

type httpReporter struct {
	endpoint string
	client   *http.Client
}

// NewHTTPReporter creates a new reporter that posts import batches to the dashboard runs endpoint
func NewHTTPReporter(endpoint string, timeout time.Duration) *httpReporter {
	return &httpReporter{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Submit sends the batch to the dashboard and returns the id of the created run
func (r *httpReporter) Submit(ctx context.Context, batch dashboardCommon.ImportBatch) (int64, error) {
	body, err := json.Marshal(batch)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal import batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create import request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("network error sending import: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, fmt.Errorf("failed to read import response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := gjson.GetBytes(respBody, "error").String()
		if len(reason) == 0 {
			reason = http.StatusText(resp.StatusCode)
		}

		return 0, fmt.Errorf("server rejected import with status code %d: %s", resp.StatusCode, reason)
	}

	runID := gjson.GetBytes(respBody, "run_id")
	if !runID.Exists() || runID.Int() <= 0 {
		return 0, fmt.Errorf("server response holds no run id: %s", string(respBody))
	}

	log.Debug("successfully sent import batch", "endpoint", r.endpoint, "run id", runID.Int(),
		"measurements", len(batch.Measurements))

	return runID.Int(), nil
}

// Close releases the idle connections of the client
func (r *httpReporter) Close() error {
	r.client.CloseIdleConnections()

	return nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (r *httpReporter) IsInterfaceNil() bool {
	return r == nil
}
