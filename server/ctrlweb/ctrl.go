// Package ctrlweb provides the HTML handlers for browsing and editing venues,
// artists and shows
package ctrlweb

import (
	"encoding/gob"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/sprig"
	"github.com/dustin/go-humanize"
	"github.com/gorilla/sessions"
	"github.com/oxtoacart/bpool"

	"go.fyyur.app/fyyur"
	"go.fyyur.app/fyyur/db"
	"go.fyyur.app/fyyur/server/assets"
	"go.fyyur.app/fyyur/server/ctrlbase"
	"go.fyyur.app/fyyur/showagg"
	"go.fyyur.app/fyyur/showtime"
)

type CtxKey int

const (
	CtxSession CtxKey = iota
)

const sessionName = "fyyur"

// extendFromFS parses every template matching pattern into b
func extendFromFS(b *template.Template, fsys fs.FS, pattern string) (*template.Template, error) {
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return b, nil
	}
	b, err = b.ParseFS(fsys, matches...)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", pattern, err)
	}
	return b, nil
}

// pagesFromFS clones b for every page matching pattern, and keys the result
// by the page's file name
func pagesFromFS(b *template.Template, fsys fs.FS, pattern string) (map[string]*template.Template, error) {
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	ret := map[string]*template.Template{}
	for _, match := range matches {
		clone, err := b.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone for %q: %w", match, err)
		}
		if _, err := clone.ParseFS(fsys, match); err != nil {
			return nil, fmt.Errorf("parse page %q: %w", match, err)
		}
		ret[filepath.Base(match)] = clone
	}
	return ret, nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"noCache": func(in string) string {
			parsed, _ := url.Parse(in)
			params := parsed.Query()
			params.Set("v", fyyur.Version)
			parsed.RawQuery = params.Encode()
			return parsed.String()
		},
		"datetime":  showtime.Format,
		"dateHuman": humanize.Time,
		"inputTime": showtime.InputValue,
	}
}

type Controller struct {
	*ctrlbase.Controller
	sessDB    sessions.Store
	buffPool  *bpool.BufferPool
	templates map[string]*template.Template
	times     *showtime.Parser
	now       func() time.Time
}

func New(b *ctrlbase.Controller, sessDB sessions.Store) (*Controller, error) {
	tmplBase := template.
		New("layout").
		Funcs(sprig.FuncMap()).
		Funcs(funcMap()).       // static
		Funcs(template.FuncMap{ // from base
			"path": b.Path,
		})
	var err error
	if tmplBase, err = extendFromFS(tmplBase, assets.Partials, "partials/*.tmpl"); err != nil {
		return nil, fmt.Errorf("extend partials: %w", err)
	}
	if tmplBase, err = extendFromFS(tmplBase, assets.Layouts, "layouts/*.tmpl"); err != nil {
		return nil, fmt.Errorf("extend layouts: %w", err)
	}
	pages, err := pagesFromFS(tmplBase, assets.Pages, "pages/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("load pages: %w", err)
	}
	return &Controller{
		Controller: b,
		sessDB:     sessDB,
		buffPool:   bpool.NewBufferPool(64),
		templates:  pages,
		times:      showtime.NewParser(),
		now:        time.Now,
	}, nil
}

// entitySummary is a venue or artist with the number of shows it has coming up
type entitySummary struct {
	ID               int
	Name             string
	NumUpcomingShows int
}

type venueArea struct {
	City   string
	State  string
	Venues []*entitySummary
}

type templateData struct {
	// common
	Flashes   []interface{}
	Version   string
	RequestID string
	// home
	RecentVenues  []*db.Venue
	RecentArtists []*db.Artist
	// listings
	Areas   []*venueArea
	Artists []*entitySummary
	Shows   []showagg.ListingEntry
	// search
	SearchTerm string
	Results    []*entitySummary
	// detail
	Venue   *db.Venue
	Artist  *db.Artist
	Summary showagg.Summary
	// forms
	VenueForm     *venueForm
	ArtistForm    *artistForm
	ShowForm      *showForm
	States        []string
	Genres        []string
	VenueChoices  []showagg.Entity
	ArtistChoices []showagg.Entity
}

type Response struct {
	// code is 200
	template string
	data     *templateData
	// code is 303
	redirect string
	flashN   []string // normal
	flashW   []string // warning
	// code is >= 400, with template rendered if set
	code int
	err  string
}

type handlerWeb func(r *http.Request) *Response

func (c *Controller) H(h handlerWeb) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := h(r)
		session, _ := r.Context().Value(CtxSession).(*sessions.Session)
		if session != nil {
			sessAddFlashN(session, resp.flashN)
			sessAddFlashW(session, resp.flashW)
			if err := session.Save(r, w); err != nil {
				http.Error(w, fmt.Sprintf("error saving session: %v", err), 500)
				return
			}
		}
		if resp.redirect != "" {
			to := resp.redirect
			if strings.HasPrefix(to, "/") {
				to = c.Path(to)
			}
			http.Redirect(w, r, to, http.StatusSeeOther)
			return
		}
		if resp.err != "" {
			http.Error(w, resp.err, resp.code)
			return
		}
		if resp.template == "" {
			http.Error(w, "useless handler return", 500)
			return
		}
		if resp.data == nil {
			resp.data = &templateData{}
		}
		if session != nil {
			resp.data.Flashes = session.Flashes()
			if err := session.Save(r, w); err != nil {
				http.Error(w, fmt.Sprintf("error saving session: %v", err), 500)
				return
			}
		}
		c.render(w, r, resp.code, resp.template, resp.data)
	})
}

func (c *Controller) render(w http.ResponseWriter, r *http.Request, code int, name string, data *templateData) {
	data.Version = fyyur.Version
	data.RequestID = ctrlbase.RequestID(r)
	buff := c.buffPool.Get()
	defer c.buffPool.Put(buff)
	tmpl, ok := c.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("finding template %q", name), 500)
		return
	}
	if err := tmpl.Execute(buff, data); err != nil {
		http.Error(w, fmt.Sprintf("executing template: %v", err), 500)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if code != 0 {
		w.WriteHeader(code)
	}
	if _, err := buff.WriteTo(w); err != nil {
		slog.Error("writing response buffer", "err", err)
	}
}

func notFound() *Response {
	return &Response{template: "not_found.tmpl", code: http.StatusNotFound}
}

func serverError(r *http.Request, err error) *Response {
	slog.Error("serving request",
		"method", r.Method,
		"path", r.URL.Path,
		"err", err,
		"request_id", ctrlbase.RequestID(r),
	)
	return &Response{template: "server_error.tmpl", code: http.StatusInternalServerError}
}

// ## begin utilities
// ## begin utilities
// ## begin utilities

type FlashType string

const (
	FlashNormal  = FlashType("normal")
	FlashWarning = FlashType("warning")
)

type Flash struct {
	Message string
	Type    FlashType
}

//nolint:gochecknoinits // flashes live in the session, which is gob encoded
func init() {
	gob.Register(&Flash{})
}

func sessAddFlashN(s *sessions.Session, messages []string) {
	sessAddFlash(s, messages, FlashNormal)
}

func sessAddFlashW(s *sessions.Session, messages []string) {
	sessAddFlash(s, messages, FlashWarning)
}

func sessAddFlash(s *sessions.Session, messages []string, flashT FlashType) {
	for i, message := range messages {
		if i > 6 {
			break
		}
		s.AddFlash(&Flash{
			Message: message,
			Type:    flashT,
		})
	}
}
