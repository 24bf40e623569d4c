package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fieldcrew/fieldpay-api/internal/models"
	"github.com/fieldcrew/fieldpay-api/pkg/config"
)

// PayrollClient posts payroll documents to the external payroll system.
type PayrollClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// NewPayrollClient builds a client from the payroll section of the config.
func NewPayrollClient(cfg config.PayrollConfig, logger *zap.Logger) *PayrollClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PayrollClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Submit sends one document. Success requires a 2xx status AND a non-empty
// response body; anything else is reported as an error so the caller never
// marks a submission sent on an ambiguous reply.
func (c *PayrollClient) Submit(ctx context.Context, doc *models.PayrollDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal payroll document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/documents", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build payroll request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("payroll request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read payroll response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Sugar().Warnw("payroll submission rejected",
			"passport_number", doc.PassportNumber, "month", doc.Month, "year", doc.Year,
			"status", resp.StatusCode)
		return fmt.Errorf("payroll system returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("payroll system returned %d with an empty body", resp.StatusCode)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
