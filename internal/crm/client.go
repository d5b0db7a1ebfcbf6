// Package crm implements the client for the external system of record.
// The routing core only sets lead ownership; contact-record creation and
// vendor notification are owned by other collaborators.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"leadrouter/platform/apperr"
	"leadrouter/platform/config"
	"leadrouter/platform/logger"

	"golang.org/x/time/rate"
)

// Client talks to the external CRM over HTTP. Calls are rate limited so bulk
// reconciliation cannot exhaust the CRM's request budget.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	log        *logger.Logger
}

// NewClient creates a CRM client from configuration.
func NewClient(cfg config.CRMConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.GetCRMTimeout()},
		baseURL:    cfg.GetCRMBaseURL(),
		apiKey:     cfg.GetCRMAPIKey(),
		limiter:    rate.NewLimiter(rate.Limit(cfg.GetCRMRequestsPerSecond()), cfg.GetCRMBurst()),
		log:        log,
	}
}

type setOwnerRequest struct {
	OwnerID string `json:"ownerId"`
}

// SetLeadOwner sets the owner of the external lead record to the vendor's
// external user id. The CRM endpoint is idempotent: setting the same owner
// again after a timeout succeeds.
func (c *Client) SetLeadOwner(ctx context.Context, externalLeadRef, externalUserID string) error {
	if externalLeadRef == "" {
		return apperr.Validation("external lead reference is empty")
	}
	if externalUserID == "" {
		return apperr.Validation("external vendor user id is empty")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(setOwnerRequest{OwnerID: externalUserID})
	if err != nil {
		return fmt.Errorf("encode set owner request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/leads/%s/owner", c.baseURL, url.PathEscape(externalLeadRef))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build set owner request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "crm request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return apperr.NotFound("external lead record not found")
	case resp.StatusCode >= 500:
		return apperr.Unavailable(fmt.Sprintf("crm returned %d", resp.StatusCode))
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		c.log.Warn("crm rejected set owner",
			"status", resp.StatusCode,
			"leadRef", externalLeadRef,
			"body", string(snippet))
		return apperr.Internal(fmt.Sprintf("crm rejected set owner with %d", resp.StatusCode))
	}
}
