package ctrlweb

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/samber/lo"

	"go.fyyur.app/fyyur/db"
	"go.fyyur.app/fyyur/server/ctrlbase"
	"go.fyyur.app/fyyur/showagg"
)

const recentLimit = 10

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func searchTerm(r *http.Request) string {
	return strings.TrimSpace(r.PostFormValue("search_term"))
}

func logWriteErr(r *http.Request, msg string, err error) {
	slog.Error(msg,
		"path", r.URL.Path,
		"err", err,
		"request_id", ctrlbase.RequestID(r),
	)
}

// uniqueIDs collects the ids picked from shows, in first seen order. never nil
func uniqueIDs(shows []*db.Show, pick func(*db.Show, int) int) []int {
	return lo.Uniq(lo.Map(shows, pick))
}

func showVenueID(s *db.Show, _ int) int  { return s.VenueID }
func showArtistID(s *db.Show, _ int) int { return s.ArtistID }

// summaries pairs each venue or artist with its upcoming show count
func summaries(entities []showagg.Entity, counts map[int]int) []*entitySummary {
	ret := make([]*entitySummary, 0, len(entities))
	for _, e := range entities {
		ret = append(ret, &entitySummary{
			ID:               e.ID,
			Name:             e.Name,
			NumUpcomingShows: counts[e.ID],
		})
	}
	return ret
}

func (c *Controller) homeData() (*templateData, error) {
	data := &templateData{}
	var err error
	if data.RecentVenues, err = c.DB.RecentVenues(recentLimit); err != nil {
		return nil, fmt.Errorf("recent venues: %w", err)
	}
	if data.RecentArtists, err = c.DB.RecentArtists(recentLimit); err != nil {
		return nil, fmt.Errorf("recent artists: %w", err)
	}
	return data, nil
}

func (c *Controller) ServeHome(r *http.Request) *Response {
	data, err := c.homeData()
	if err != nil {
		return serverError(r, err)
	}
	return &Response{template: "home.tmpl", data: data}
}

func (c *Controller) ServeNotFound(_ *http.Request) *Response {
	return notFound()
}
