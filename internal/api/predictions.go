package api

import (
	"context"
	"net/http"

	"github.com/saadjs/cycle-cli/internal/errors"
	"github.com/saadjs/cycle-cli/internal/log"
	"github.com/saadjs/cycle-cli/internal/model"
)

// PeriodForecast fetches the next predicted period. A forecast without a
// date is a successful "not enough history" answer, not an error.
func (c *Client) PeriodForecast(ctx context.Context) (model.Forecast, error) {
	return c.forecast(ctx, "/predict/period", "Failed to load period prediction")
}

// OvulationForecast fetches the next predicted ovulation.
func (c *Client) OvulationForecast(ctx context.Context) (model.Forecast, error) {
	return c.forecast(ctx, "/predict/ovulation", "Failed to load ovulation prediction")
}

func (c *Client) forecast(ctx context.Context, path, fallback string) (model.Forecast, error) {
	cl := call{method: http.MethodGet, path: path, auth: true, code: errors.ErrCodeFetchFailed, fallback: fallback}
	raw, err := c.do(ctx, cl)
	if err != nil {
		return model.Forecast{}, err
	}
	var f model.Forecast
	if err := decode(cl, raw, &f); err != nil {
		return model.Forecast{}, err
	}
	return f, nil
}

func (c *Client) logger() *log.Logger {
	return log.OrDiscard(c.Logger)
}
