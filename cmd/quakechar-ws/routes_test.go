package main

import (
	"net/http"
	"testing"

	wt "github.com/GeoNet/kit/weft/wefttest"
)

var routes = wt.Requests{
	{ID: wt.L(), URL: "/soh/up", Content: "text/html; charset=utf-8"},
	{ID: wt.L(), URL: "/soh", Content: "text/html; charset=utf-8"},
	{ID: wt.L(), URL: "/health", Content: "application/json"},
	{ID: wt.L(), URL: "/metrics"},

	{ID: wt.L(), URL: "/waveform/files", Content: "application/json"},
	{ID: wt.L(), URL: "/waveform/conditioned?file=event.mseed", Content: "application/vnd.fdsn.mseed"},
	{ID: wt.L(), URL: "/waveform/conditioned?file=event.mseed&fmin=0.5&fmax=10&filter=lowpass", Content: "application/vnd.fdsn.mseed"},
	{ID: wt.L(), URL: "/waveform/conditioned?file=event.mseed&filter=none", Content: "application/vnd.fdsn.mseed"},
	{ID: wt.L(), URL: "/waveform/conditioned?file=missing.mseed", Content: "text/plain; charset=utf-8", Status: http.StatusNotFound},
	{ID: wt.L(), URL: "/waveform/conditioned?file=..%2Fevent.mseed", Content: "text/plain; charset=utf-8", Status: http.StatusBadRequest},
	{ID: wt.L(), URL: "/waveform/conditioned?file=event.mseed&fmin=5&fmax=1", Status: http.StatusBadRequest},
	{ID: wt.L(), URL: "/waveform/conditioned?file=event.mseed&fmin=low", Status: http.StatusBadRequest},
	{ID: wt.L(), URL: "/waveform/conditioned?file=event.mseed&filter=notch", Status: http.StatusBadRequest},
	{ID: wt.L(), URL: "/waveform/conditioned?file=event.mseed&station=WEL", Status: http.StatusBadRequest},
	{ID: wt.L(), URL: "/waveform/conditioned", Status: http.StatusBadRequest},

	{ID: wt.L(), URL: "/waveform/picks/suggest", Status: http.StatusMethodNotAllowed},
	{ID: wt.L(), URL: "/waveform/magnitude", Status: http.StatusMethodNotAllowed},
	{ID: wt.L(), URL: "/location/epicenter", Status: http.StatusMethodNotAllowed},

	{ID: wt.L(), URL: "/picks", Content: "application/json"},
	{ID: wt.L(), URL: "/picks?station=WEL", Content: "application/json"},
	{ID: wt.L(), URL: "/picks?id=abc", Status: http.StatusBadRequest},
	{ID: wt.L(), URL: "/picks", Method: "DELETE", Status: http.StatusBadRequest},
	{ID: wt.L(), URL: "/picks?id=5bd7c5fe-2b4d-4a4e-9d64-1a0f2a9c1c11", Method: "DELETE", Status: http.StatusNotFound},
	{ID: wt.L(), URL: "/picks", Method: "PUT", Status: http.StatusMethodNotAllowed},

	{ID: wt.L(), URL: "/nothing/here", Status: http.StatusNotFound},
}

// routes that need files give 404 when no data dir is configured.
var inventoryRoutes = wt.Requests{
	{ID: wt.L(), URL: "/health", Content: "application/json"},
	{ID: wt.L(), URL: "/waveform/files", Status: http.StatusNotFound},
	{ID: wt.L(), URL: "/waveform/conditioned?file=event.mseed", Status: http.StatusNotFound},
}

// Test all routes give the expected response.
func TestRoutes(t *testing.T) {
	for _, r := range routes {
		if b, err := r.Do(ts.URL); err != nil {
			t.Error(err)
			if len(b) > 0 {
				t.Error(string(b))
			}
		}
	}

	for _, r := range inventoryRoutes {
		if b, err := r.Do(tsInv.URL); err != nil {
			t.Error(err)
			if len(b) > 0 {
				t.Error(string(b))
			}
		}
	}
}
