package lock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sagar9995/shipcrop/internal/common"
)

// DefaultURL is the hosted status document consulted once at startup.
const DefaultURL = "https://raw.githubusercontent.com/sagar9995/meesho_file/main/lockv2.json"

type statusDoc struct {
	Status bool `json:"Status"`
}

// Client checks the remote service-enabled flag. The whole run must abort
// before any folder work when the flag is off or the document is unreachable.
type Client struct {
	url    string
	http   *http.Client
	logger *slog.Logger
}

func NewClient(url string, client *http.Client, logger *slog.Logger) *Client {
	if url == "" {
		url = DefaultURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{url: url, http: client, logger: logger}
}

// Enabled fetches the status document and returns nil only when the service
// is enabled. Any transport failure, non-200 status, or a false flag is an
// error wrapping common.ErrLocked.
func (c *Client) Enabled(ctx context.Context) error {
	reqID := uuid.New().String()
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("lock.check.send_error", "req_id", reqID, "error", err)
		return common.NewAppError("LOCK_UNREACHABLE", "status check failed", common.ErrLocked)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.logger.Warn("lock.check.body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)

	c.logger.Info("lock.check.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		return common.NewAppError("LOCK_STATUS", fmt.Sprintf("status check returned %d", resp.StatusCode), common.ErrLocked)
	}

	var doc statusDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return common.NewAppError("LOCK_DECODE", "status document malformed", common.ErrLocked)
	}
	if !doc.Status {
		return common.NewAppError("LOCK_DISABLED", "service disabled remotely", common.ErrLocked)
	}
	return nil
}
