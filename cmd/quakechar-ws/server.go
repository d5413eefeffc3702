package main

/*
quakechar-ws serves P onset suggestions, local magnitudes, and epicentres
for single channel seismic traces.
*/

import (
	"io/fs"
	"log"
	"net/http"
	"reflect"
	"time"

	"github.com/GeoNet/quakechar/internal/config"
	"github.com/GeoNet/quakechar/internal/location"
	"github.com/gorilla/schema"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	decoder := schema.NewDecoder()
	// CheckQuery limits the keys for each route.
	decoder.IgnoreUnknownKeys(true)
	// grid axes are min,max,step and must be searchable
	decoder.RegisterConverter(location.Axis{}, func(input string) reflect.Value {
		var a location.Axis
		if err := a.UnmarshalText([]byte(input)); err != nil {
			return reflect.Value{}
		}
		if err := a.Validate(); err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(a)
	})
	return decoder
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("error reading .env: %s", err)
	}

	c, err := config.Load()
	if err != nil {
		log.Fatalf("error reading config from the environment vars: %s", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := newApp(c, reg)
	if err != nil {
		log.Fatal(err)
	}
	defer a.close()

	log.Println("starting server")
	server := &http.Server{
		Addr:         c.HTTPAddr,
		Handler:      a.routes(),
		ReadTimeout:  1 * time.Minute,
		WriteTimeout: 10 * time.Minute,
	}
	log.Fatal(server.ListenAndServe())
}
