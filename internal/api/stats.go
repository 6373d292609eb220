package api

import (
	"context"
	"net/http"

	"github.com/saadjs/cycle-cli/internal/errors"
	"github.com/saadjs/cycle-cli/internal/model"
)

// CycleStats returns the service's aggregate summary untouched. Missing
// fields stay nil; on failure the summary is empty.
func (c *Client) CycleStats(ctx context.Context) (model.CycleStatistics, error) {
	cl := call{method: http.MethodGet, path: "/cycle-stats", auth: true, code: errors.ErrCodeFetchFailed, fallback: "Failed to load cycle statistics"}
	raw, err := c.do(ctx, cl)
	if err != nil {
		return model.CycleStatistics{}, err
	}
	var stats model.CycleStatistics
	if err := decode(cl, raw, &stats); err != nil {
		return model.CycleStatistics{}, err
	}
	return stats, nil
}
