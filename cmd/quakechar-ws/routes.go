package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/GeoNet/kit/weft"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBody limits request bodies.  A day of 100 Hz samples as JSON fits.
const maxBody = 64 << 20

func (a *app) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", weft.MakeHandler(weft.NoMatch, weft.TextError))
	mux.HandleFunc("/soh/up", weft.MakeHandler(weft.Up, weft.TextError))
	mux.HandleFunc("/soh", weft.MakeHandler(a.soh, weft.UseError))
	mux.HandleFunc("/health", weft.MakeHandler(a.health, weft.TextError))
	mux.Handle("/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("/waveform/files", weft.MakeHandler(a.files, weft.TextError))
	mux.HandleFunc("/waveform/conditioned", weft.MakeHandler(a.conditioned, weft.TextError))
	mux.HandleFunc("/waveform/picks/suggest", weft.MakeHandler(a.suggest, weft.TextError))
	mux.HandleFunc("/waveform/magnitude", weft.MakeHandler(a.magnitude, weft.TextError))
	mux.HandleFunc("/location/epicenter", weft.MakeHandler(a.epicenter, weft.TextError))
	mux.HandleFunc("/picks", weft.MakeHandler(a.pickArchive, weft.TextError))

	return mux
}

func (a *app) soh(r *http.Request, h http.Header, b *bytes.Buffer) error {
	err := weft.CheckQuery(r, []string{"GET"}, []string{}, []string{})
	if err != nil {
		return err
	}

	l, err := a.picks.List(r.Context(), "")
	if err != nil {
		b.Write([]byte("<html><head></head><body>pick archive unavailable.</body></html>"))
		return weft.StatusError{Code: http.StatusServiceUnavailable}
	}

	b.Write([]byte(fmt.Sprintf("<html><head></head><body>have %d archived picks.</body></html>", len(l))))

	return nil
}

func (a *app) health(r *http.Request, h http.Header, b *bytes.Buffer) error {
	err := weft.CheckQuery(r, []string{"GET"}, []string{}, []string{})
	if err != nil {
		return err
	}

	return writeJSON(h, b, struct {
		Status    string `json:"status"`
		App       string `json:"app"`
		Traces    bool   `json:"traces"`
		Inventory bool   `json:"inventory"`
		PickDB    string `json:"pick_db"`
	}{
		Status:    "ok",
		App:       "quakechar-ws",
		Traces:    a.traces != nil,
		Inventory: a.inventory != nil,
		PickDB:    a.cfg.PickDB,
	})
}

// logDegraded logs one line for src when warnings show the filter or the
// instrument response could not be applied as asked.
func logDegraded(src string, warnings []string) {
	for _, w := range warnings {
		if strings.Contains(w, "filter failed") || strings.HasPrefix(w, "instrument response not removed") {
			log.Printf("WARN: %s degraded: %s", src, strings.Join(warnings, "; "))
			return
		}
	}
}

func badRequest(err error) error {
	return weft.StatusError{Code: http.StatusBadRequest, Err: err}
}

func notFound(err error) error {
	return weft.StatusError{Code: http.StatusNotFound, Err: err}
}

// readJSON decodes the request body into v.  Unknown fields are an error.
func readJSON(r *http.Request, v interface{}) error {
	d := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	d.DisallowUnknownFields()

	if err := d.Decode(v); err != nil {
		return badRequest(errors.Wrap(err, "decoding request body"))
	}

	return nil
}

func writeJSON(h http.Header, b *bytes.Buffer, v interface{}) error {
	h.Set("Content-Type", "application/json")
	return json.NewEncoder(b).Encode(v)
}
