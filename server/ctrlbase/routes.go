package ctrlbase

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

func AddRoutes(c *Controller, r *mux.Router, logHTTP bool) {
	r.Use(c.WithRequestID)
	if logHTTP {
		r.Use(c.WithLogging)
	}
	if c.Metrics != nil {
		r.Use(c.WithMetrics)
		r.Handle("/metrics", c.Metrics.Handler())
	}

	r.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "OK")
	})
}
