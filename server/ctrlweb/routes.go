package ctrlweb

import (
	"net/http"

	"github.com/gorilla/mux"

	"go.fyyur.app/fyyur/server/assets"
)

const (
	get  = http.MethodGet
	post = http.MethodPost
)

func AddRoutes(c *Controller, r *mux.Router) {
	r.Use(c.WithRecovery)
	r.Use(c.WithSession)

	r.PathPrefix("/static").Handler(http.FileServer(http.FS(assets.Static)))

	r.Handle("/", c.H(c.ServeHome)).Methods(get)

	r.Handle("/venues", c.H(c.ServeVenues)).Methods(get)
	r.Handle("/venues/search", c.H(c.ServeVenueSearch)).Methods(post)
	r.Handle("/venues/create", c.H(c.ServeVenueCreate)).Methods(get)
	r.Handle("/venues/create", c.H(c.ServeVenueCreateDo)).Methods(post)
	r.Handle("/venues/{id:[0-9]+}", c.H(c.ServeVenue)).Methods(get)
	r.Handle("/venues/{id:[0-9]+}", c.H(c.ServeVenueDelete)).Methods(http.MethodDelete)
	r.Handle("/venues/{id:[0-9]+}/edit", c.H(c.ServeVenueEdit)).Methods(get)
	r.Handle("/venues/{id:[0-9]+}/edit", c.H(c.ServeVenueEditDo)).Methods(post)

	r.Handle("/artists", c.H(c.ServeArtists)).Methods(get)
	r.Handle("/artists/search", c.H(c.ServeArtistSearch)).Methods(post)
	r.Handle("/artists/create", c.H(c.ServeArtistCreate)).Methods(get)
	r.Handle("/artists/create", c.H(c.ServeArtistCreateDo)).Methods(post)
	r.Handle("/artists/{id:[0-9]+}", c.H(c.ServeArtist)).Methods(get)
	r.Handle("/artists/{id:[0-9]+}/edit", c.H(c.ServeArtistEdit)).Methods(get)
	r.Handle("/artists/{id:[0-9]+}/edit", c.H(c.ServeArtistEditDo)).Methods(post)

	r.Handle("/shows", c.H(c.ServeShows)).Methods(get)
	r.Handle("/shows/create", c.H(c.ServeShowCreate)).Methods(get)
	r.Handle("/shows/create", c.H(c.ServeShowCreateDo)).Methods(post)

	// middlewares should be run for not found handler
	// https://github.com/gorilla/mux/issues/416
	r.NewRoute().Handler(c.H(c.ServeNotFound))
}
