package main

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/GeoNet/kit/weft"
	"github.com/GeoNet/quakechar/internal/magnitude"
	"github.com/GeoNet/quakechar/internal/picking"
	"github.com/GeoNet/quakechar/internal/waveform"
	"github.com/pkg/errors"
)

type magnitudeRequest struct {
	Waveform  *waveform.Trace  `json:"waveform"`
	Picks     []picking.Pick   `json:"picks"`
	Algorithm magnitude.Method `json:"algorithm"`
}

// normalizePicks trims and upper cases pick stream codes to match traces.
func normalizePicks(picks []picking.Pick) ([]picking.Pick, error) {
	n := make([]picking.Pick, len(picks))

	for i, p := range picks {
		p.Station = strings.ToUpper(strings.TrimSpace(p.Station))
		p.Channel = strings.ToUpper(strings.TrimSpace(p.Channel))

		if err := p.Validate(); err != nil {
			return nil, errors.Wrapf(err, "pick %d", i)
		}

		n[i] = p
	}

	return n, nil
}

// magnitude estimates ML.  The Wood-Anderson method removes the instrument
// response when an inventory is configured.
func (a *app) magnitude(r *http.Request, h http.Header, b *bytes.Buffer) error {
	err := weft.CheckQuery(r, []string{"POST"}, []string{}, []string{"file", "fmin", "fmax"})
	if err != nil {
		return err
	}

	c := conditioning{FMin: a.cfg.FMin, FMax: a.cfg.FMax}

	if err := decoder.Decode(&c, r.URL.Query()); err != nil {
		return badRequest(err)
	}

	if err := c.validate(); err != nil {
		return badRequest(err)
	}

	var req magnitudeRequest

	if err := readJSON(r, &req); err != nil {
		return err
	}

	if len(req.Picks) == 0 {
		return badRequest(errors.New("at least one pick is required"))
	}

	picks, err := normalizePicks(req.Picks)
	if err != nil {
		return badRequest(err)
	}

	t, err := a.trace(r.Context(), r.URL.Query().Get("file"), req.Waveform)
	if err != nil {
		return err
	}

	method := req.Algorithm
	if (method == "" || method == magnitude.WoodAndersonMethod) && a.remover != nil {
		method = magnitude.WoodAndersonInstMethod
	}

	est, err := magnitude.New(method, a.conditioner, a.remover)
	if err != nil {
		return badRequest(err)
	}

	if w, ok := est.(*magnitude.WoodAnderson); ok {
		w.FMin, w.FMax = c.FMin, c.FMax
	}

	res, err := est.Estimate(picks, t)

	label := string(res.Method)
	if label == "" {
		label = string(method)
	}
	a.metrics.Magnitude(label, res.ML != nil, err)

	if err != nil {
		return badRequest(err)
	}

	logDegraded(t.SrcName(), res.Warnings)

	return writeJSON(h, b, res)
}
