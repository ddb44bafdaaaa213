package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/alexiusacademia/gotno/internal/analysis"
	"github.com/alexiusacademia/gotno/internal/form"
	"github.com/alexiusacademia/gotno/internal/optimiser"
	"github.com/alexiusacademia/gotno/internal/shape"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func archRequest(tst *testing.T) Request {
	s, err := shape.CreateArch(1, 2, 0.5, 0.2, 16)
	if err != nil {
		tst.Fatalf("CreateArch (shape) failed:\n%v", err)
	}
	f, err := form.CreateArch(1, 2, 0, 16)
	if err != nil {
		tst.Fatalf("CreateArch (form) failed:\n%v", err)
	}
	return Request{Form: f, Shape: s, Optimiser: optimiser.CreateMinThrust()}
}

func Test_handle01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("handle01. JSON round trip through the service boundary")

	req := archRequest(tst)
	data, err := json.Marshal(req)
	if err != nil {
		tst.Errorf("Marshal failed:\n%v", err)
		return
	}
	out, err := Handle(context.Background(), data)
	if err != nil {
		tst.Errorf("Handle failed:\n%v", err)
		return
	}

	var resp Response
	if err := json.Unmarshal(out, &resp); err != nil {
		tst.Errorf("Unmarshal failed:\n%v", err)
		return
	}
	if resp.Result == nil || resp.Result.Status != analysis.StatusConverged {
		tst.Errorf("expected a converged result, got %+v", resp.Result)
		return
	}
	if resp.Optimiser.Status != optimiser.StatusConverged || resp.Optimiser.Message == "" {
		tst.Errorf("optimiser outcome missing: %+v", resp.Optimiser)
	}
	chk.Float64(tst, "fopt", 1e-12, resp.Optimiser.Fopt, resp.Result.Fopt)

	heights := make([]float64, len(resp.Form.Nodes))
	for i, n := range resp.Form.Nodes {
		heights[i] = n.Position.Z
	}
	chk.Array(tst, "thrust network heights", 1e-15, heights, resp.Result.Heights)
	io.Pforan("thrust = %.5f kN\n", resp.Result.Thrust)

	// the typed boundary gives the same answer
	typed, err := Run(context.Background(), req)
	if err != nil {
		tst.Errorf("Run failed:\n%v", err)
		return
	}
	chk.Float64(tst, "thrust", 1e-9, typed.Result.Thrust, resp.Result.Thrust)
	if req.Optimiser.Status != optimiser.StatusNone {
		tst.Errorf("request optimiser was modified: %q", req.Optimiser.Status)
	}
}

func Test_handle02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("handle02. malformed requests")

	var rerr *RequestError
	if _, err := Handle(context.Background(), []byte("{")); !errors.As(err, &rerr) {
		tst.Errorf("expected a request error, got %v", err)
	}

	req := archRequest(tst)
	req.Form.SetFixed(0, false)
	req.Form.SetFixed(16, false)
	data, _ := json.Marshal(req)
	_, err := Handle(context.Background(), data)
	if !errors.As(err, &rerr) || rerr.Field != "form" {
		tst.Errorf("expected a form request error, got %v", err)
	}
	var terr *form.TopologyError
	if !errors.As(err, &terr) {
		tst.Errorf("the topology error should be wrapped, got %v", err)
	}

	if _, err := Run(context.Background(), Request{}); !errors.As(err, &rerr) {
		tst.Errorf("expected a request error for an empty request, got %v", err)
	}
}
