package main

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/GeoNet/kit/weft"
	"github.com/GeoNet/quakechar/internal/pickdb"
	"github.com/GeoNet/quakechar/internal/picking"
	"github.com/pkg/errors"
)

// pickArchive lists (GET), adds (POST), and deletes (DELETE) archived picks.
func (a *app) pickArchive(r *http.Request, h http.Header, b *bytes.Buffer) error {
	switch r.Method {
	case "GET":
		return a.listPicks(r, h, b)
	case "POST":
		return a.addPick(r, h, b)
	case "DELETE":
		return a.deletePick(r, h, b)
	}

	return weft.StatusError{Code: http.StatusMethodNotAllowed, Err: errors.New("method not allowed")}
}

func (a *app) listPicks(r *http.Request, h http.Header, b *bytes.Buffer) error {
	err := weft.CheckQuery(r, []string{"GET"}, []string{}, []string{"station"})
	if err != nil {
		return err
	}

	l, err := a.picks.List(r.Context(), strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("station"))))
	if err != nil {
		return err
	}

	return writeJSON(h, b, struct {
		Picks []pickdb.Entry `json:"picks"`
	}{Picks: l})
}

func (a *app) addPick(r *http.Request, h http.Header, b *bytes.Buffer) error {
	err := weft.CheckQuery(r, []string{"POST"}, []string{}, []string{})
	if err != nil {
		return err
	}

	var p picking.Pick

	if err := readJSON(r, &p); err != nil {
		return err
	}

	picks, err := normalizePicks([]picking.Pick{p})
	if err != nil {
		return badRequest(err)
	}

	e, err := a.picks.Add(r.Context(), picks[0])
	if err != nil {
		return err
	}

	return writeJSON(h, b, e)
}

func (a *app) deletePick(r *http.Request, h http.Header, b *bytes.Buffer) error {
	err := weft.CheckQuery(r, []string{"DELETE"}, []string{"id"}, []string{})
	if err != nil {
		return err
	}

	id := r.URL.Query().Get("id")

	err = a.picks.Delete(r.Context(), id)
	switch {
	case errors.Is(err, pickdb.ErrNotFound):
		return notFound(err)
	case err != nil:
		return err
	}

	return writeJSON(h, b, struct {
		Deleted string `json:"deleted"`
	}{Deleted: id})
}
