package api

import (
	"context"
	"net/http"

	"github.com/saadjs/cycle-cli/internal/errors"
	"github.com/saadjs/cycle-cli/internal/model"
)

const (
	addPeriodFailed    = "Failed to add period"
	addOvulationFailed = "Failed to add ovulation data"
)

// ListPeriods returns the user's periods in service order (most recent
// first). On failure the slice is empty, never nil, so callers can render
// "no data" without checking the error.
func (c *Client) ListPeriods(ctx context.Context) ([]model.PeriodRecord, error) {
	out := []model.PeriodRecord{}
	if err := c.list(ctx, "/periods", "Failed to load periods", &out); err != nil {
		return []model.PeriodRecord{}, err
	}
	if out == nil {
		out = []model.PeriodRecord{}
	}
	return out, nil
}

// ListOvulations mirrors ListPeriods for ovulation records.
func (c *Client) ListOvulations(ctx context.Context) ([]model.OvulationRecord, error) {
	out := []model.OvulationRecord{}
	if err := c.list(ctx, "/ovulation", "Failed to load ovulation data", &out); err != nil {
		return []model.OvulationRecord{}, err
	}
	if out == nil {
		out = []model.OvulationRecord{}
	}
	return out, nil
}

func (c *Client) list(ctx context.Context, path, fallback string, out any) error {
	cl := call{method: http.MethodGet, path: path, auth: true, code: errors.ErrCodeFetchFailed, fallback: fallback}
	raw, err := c.do(ctx, cl)
	if err != nil {
		return err
	}
	return decode(cl, raw, out)
}

// CreatePeriod submits a new period. Required fields are the caller's
// responsibility; this only shapes the payload.
func (c *Client) CreatePeriod(ctx context.Context, in PeriodInput) (model.PeriodRecord, error) {
	body, err := EncodePeriod(in)
	if err != nil {
		return model.PeriodRecord{}, errors.Wrap(errors.ErrCodeSubmitFailed, addPeriodFailed, err)
	}
	var created model.PeriodRecord
	err = c.create(ctx, call{
		method:   http.MethodPost,
		path:     "/periods",
		body:     body,
		auth:     true,
		code:     errors.ErrCodeSubmitFailed,
		fallback: addPeriodFailed,
	}, &created)
	return created, err
}

// CreateOvulation submits a new ovulation record.
func (c *Client) CreateOvulation(ctx context.Context, in OvulationInput) (model.OvulationRecord, error) {
	body, err := EncodeOvulation(in)
	if err != nil {
		return model.OvulationRecord{}, errors.Wrap(errors.ErrCodeSubmitFailed, addOvulationFailed, err)
	}
	var created model.OvulationRecord
	err = c.create(ctx, call{
		method:   http.MethodPost,
		path:     "/ovulation",
		body:     body,
		auth:     true,
		code:     errors.ErrCodeSubmitFailed,
		fallback: addOvulationFailed,
	}, &created)
	return created, err
}

// create treats any 2xx as success. A body that does not decode as the
// created record is logged and ignored.
func (c *Client) create(ctx context.Context, cl call, out any) error {
	raw, err := c.do(ctx, cl)
	if err != nil {
		return err
	}
	if err := decode(cl, raw, out); err != nil {
		c.logger().WithError(err).Debug("created record not decoded", "path", cl.path)
	}
	return nil
}
