// Package service runs complete analyses behind a synchronous request and
// response boundary. Requests and responses carry the form diagram, the
// shape and the optimiser in their JSON data form.
package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexiusacademia/gotno/internal/analysis"
	"github.com/alexiusacademia/gotno/internal/form"
	"github.com/alexiusacademia/gotno/internal/optimiser"
	"github.com/alexiusacademia/gotno/internal/shape"
)

// Request is a (form, shape, optimiser) triple to be solved
type Request struct {
	Form      *form.Diagram        `json:"form"`
	Shape     *shape.Shape         `json:"shape"`
	Optimiser *optimiser.Optimiser `json:"optimiser"`
}

// Response returns the triple updated with the outcome: the form lifted to
// the thrust network and the optimiser carrying status, message and fopt
type Response struct {
	Form      *form.Diagram        `json:"form"`
	Shape     *shape.Shape         `json:"shape"`
	Optimiser *optimiser.Optimiser `json:"optimiser"`
	Result    *analysis.Result     `json:"result"`
}

// RequestError represents a malformed request
type RequestError struct {
	Field string
	Err   error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid request %s: %v", e.Field, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Run performs the whole pipeline for a request. The request objects are
// not modified. When the solver fails the response is still returned with
// a failed result, together with the error.
func Run(ctx context.Context, req Request) (*Response, error) {
	if req.Form == nil {
		return nil, &RequestError{Field: "form", Err: fmt.Errorf("missing")}
	}
	if req.Shape == nil {
		return nil, &RequestError{Field: "shape", Err: fmt.Errorf("missing")}
	}
	if req.Optimiser == nil {
		return nil, &RequestError{Field: "optimiser", Err: fmt.Errorf("missing")}
	}

	opt := *req.Optimiser
	opt.Constraints = append([]optimiser.Constraint(nil), req.Optimiser.Constraints...)
	a, err := analysis.New(req.Form, req.Shape, &opt)
	if err != nil {
		return nil, err
	}

	steps := []func() error{a.ApplySelfweight}
	if opt.Has(optimiser.Envelope) || opt.Has(optimiser.ReacBounds) {
		steps = append(steps, a.ApplyEnvelope)
	}
	if opt.Has(optimiser.ReacBounds) {
		steps = append(steps, a.ApplyReactionBounds)
	}
	steps = append(steps, a.SetUpOptimiser)
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	res, runErr := a.Run(ctx)
	if res == nil {
		return nil, runErr
	}
	resp := &Response{
		Form:      req.Form,
		Shape:     req.Shape,
		Optimiser: &opt,
		Result:    res,
	}
	if res.Heights != nil {
		resp.Form = res.ThrustNetwork(req.Form)
	}
	return resp, runErr
}

// Handle decodes a JSON request, runs it and encodes the response. The
// encoded response is returned for failed runs as well.
func Handle(ctx context.Context, data []byte) ([]byte, error) {
	var raw struct {
		Form      json.RawMessage `json:"form"`
		Shape     json.RawMessage `json:"shape"`
		Optimiser json.RawMessage `json:"optimiser"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &RequestError{Field: "body", Err: err}
	}

	var req Request
	var err error
	if req.Form, err = form.FromData(raw.Form); err != nil {
		return nil, &RequestError{Field: "form", Err: err}
	}
	if req.Shape, err = shape.FromData(raw.Shape); err != nil {
		return nil, &RequestError{Field: "shape", Err: err}
	}
	if req.Optimiser, err = optimiser.FromData(raw.Optimiser); err != nil {
		return nil, &RequestError{Field: "optimiser", Err: err}
	}

	resp, runErr := Run(ctx, req)
	if resp == nil {
		return nil, runErr
	}
	out, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return out, runErr
}
