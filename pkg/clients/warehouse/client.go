package warehouse

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/braincoral/reefplan/internal/config"
	"github.com/braincoral/reefplan/internal/domain/models"
)

// Client exposes the inventory warehouse operations used by the planner.
type Client interface {
	FetchBatches(ctx context.Context, tenant string, asOf *time.Time) ([]models.BatchRow, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a warehouse API client using the provided configuration
// values.
func NewClient(cfg config.WarehouseConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)

	if cfg.APIToken != "" {
		restyClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIToken))
	}

	return &APIClient{httpClient: restyClient}
}

// apiError represents a warehouse API error payload.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// FetchBatches returns the inventory rows for a tenant, either the current
// state or as of the given date.
func (c *APIClient) FetchBatches(ctx context.Context, tenant string, asOf *time.Time) ([]models.BatchRow, error) {
	var rows []models.BatchRow
	apiErr := new(apiError)

	req := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("tenant", tenant).
		SetResult(&rows).
		SetError(apiErr)

	if asOf != nil {
		req.SetQueryParam("as_of", asOf.Format("2006-01-02"))
	}

	resp, err := req.Get("/v1/batches")
	if err != nil {
		return nil, fmt.Errorf("fetch warehouse batches: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := ""
		code := resp.StatusCode()
		if apiErr != nil {
			message = apiErr.Error.Message
			if apiErr.Error.Code != 0 {
				code = apiErr.Error.Code
			}
		}
		return nil, fmt.Errorf("warehouse api error: code=%d, message=%s", code, message)
	}

	return rows, nil
}
