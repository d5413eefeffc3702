package main

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/GeoNet/kit/weft"
	"github.com/GeoNet/quakechar/internal/picking"
	"github.com/GeoNet/quakechar/internal/signal"
	"github.com/GeoNet/quakechar/internal/waveform"
	"github.com/pkg/errors"
)

// conditioning is the band for a request.  Zero values use the configured band.
type conditioning struct {
	FMin   float64 `schema:"fmin"`
	FMax   float64 `schema:"fmax"`
	Filter string  `schema:"filter"`
}

func (c conditioning) validate() error {
	if !(c.FMin >= 0) || !(c.FMax > c.FMin) {
		return errors.Errorf("invalid band %v-%v Hz", c.FMin, c.FMax)
	}
	return nil
}

type suggestRequest struct {
	Waveform *waveform.Trace `json:"waveform"`
}

// trace returns the named file from the store or the posted waveform.
func (a *app) trace(ctx context.Context, file string, posted *waveform.Trace) (waveform.Trace, error) {
	var t waveform.Trace

	switch {
	case file != "":
		if a.traces == nil {
			return t, notFound(errors.New("no waveform files are configured"))
		}

		var err error

		t, err = a.traces.Trace(ctx, file)
		switch {
		case errors.Is(err, waveform.ErrInvalidName):
			return t, badRequest(err)
		case errors.Is(err, waveform.ErrNotFound):
			return t, notFound(err)
		case err != nil:
			return t, err
		}
	case posted != nil:
		t = *posted
	default:
		return t, badRequest(errors.New("a waveform or file is required"))
	}

	t.Normalize()

	if err := t.Validate(); err != nil {
		return t, badRequest(err)
	}

	return t, nil
}

func (a *app) suggest(r *http.Request, h http.Header, b *bytes.Buffer) error {
	err := weft.CheckQuery(r, []string{"POST"}, []string{}, []string{"file", "sta", "lta", "on", "off", "max"})
	if err != nil {
		return err
	}

	cfg := a.cfg.Detector

	if err := decoder.Decode(&cfg, r.URL.Query()); err != nil {
		return badRequest(err)
	}

	if err := cfg.Validate(); err != nil {
		return badRequest(err)
	}

	file := r.URL.Query().Get("file")

	var req suggestRequest

	if file == "" {
		if err := readJSON(r, &req); err != nil {
			return err
		}
	}

	t, err := a.trace(r.Context(), file, req.Waveform)
	if err != nil {
		return err
	}

	s, err := a.detector.Suggest(t, cfg)
	if err != nil {
		return badRequest(err)
	}

	a.metrics.Suggestions.Add(float64(len(s)))

	return writeJSON(h, b, struct {
		Suggestions []picking.Suggestion `json:"suggestions"`
	}{Suggestions: s})
}

func (a *app) files(r *http.Request, h http.Header, b *bytes.Buffer) error {
	err := weft.CheckQuery(r, []string{"GET"}, []string{}, []string{})
	if err != nil {
		return err
	}

	if a.traces == nil {
		return notFound(errors.New("no waveform files are configured"))
	}

	f, err := a.traces.Files()
	if err != nil {
		return err
	}

	return writeJSON(h, b, struct {
		Files []string `json:"files"`
	}{Files: f})
}

// conditioned serves a stored trace detrended, tapered, and filtered as miniSEED.
// Conditioning warnings are returned in the Warning header.
func (a *app) conditioned(r *http.Request, h http.Header, b *bytes.Buffer) error {
	err := weft.CheckQuery(r, []string{"GET"}, []string{"file"}, []string{"fmin", "fmax", "filter"})
	if err != nil {
		return err
	}

	c := conditioning{FMin: a.cfg.FMin, FMax: a.cfg.FMax, Filter: signal.Bandpass}

	if err := decoder.Decode(&c, r.URL.Query()); err != nil {
		return badRequest(err)
	}

	if err := c.validate(); err != nil {
		return badRequest(err)
	}

	t, err := a.trace(r.Context(), r.URL.Query().Get("file"), nil)
	if err != nil {
		return err
	}

	var warnings []string

	t.Samples, warnings, err = a.conditioner.Apply(c.Filter, signal.Condition(t.Samples), t.SampleRate, c.FMin, c.FMax)
	if err != nil {
		return badRequest(err)
	}

	logDegraded(t.SrcName(), warnings)

	if len(warnings) > 0 {
		h.Set("Warning", `199 quakechar-ws "`+strings.Join(warnings, "; ")+`"`)
	}

	if err := waveform.EncodeMiniSEED(b, t); err != nil {
		return err
	}

	h.Set("Content-Type", "application/vnd.fdsn.mseed")

	return nil
}
