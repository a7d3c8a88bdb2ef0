package ctrlweb

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/samber/lo"

	"go.fyyur.app/fyyur/db"
	"go.fyyur.app/fyyur/showagg"
)

// groupAreas splits venues into runs sharing a city and state. venues come
// ordered by area, so each area is a single run
func groupAreas(venues []*db.Venue, counts map[int]int) []*venueArea {
	var areas []*venueArea
	var cur *venueArea
	for _, v := range venues {
		if cur == nil || cur.City != v.City || cur.State != v.State {
			cur = &venueArea{City: v.City, State: v.State}
			areas = append(areas, cur)
		}
		cur.Venues = append(cur.Venues, &entitySummary{
			ID:               v.ID,
			Name:             v.Name,
			NumUpcomingShows: counts[v.ID],
		})
	}
	return areas
}

func venueIDs(venues []*db.Venue) []int {
	return lo.Map(venues, func(v *db.Venue, _ int) int { return v.ID })
}

func (c *Controller) upcomingForVenues(venues []*db.Venue) (map[int]int, error) {
	shows, err := c.DB.ShowsForVenues(venueIDs(venues))
	if err != nil {
		return nil, err
	}
	return showagg.UpcomingCounts(c.now(), db.ShowValues(shows), showagg.KindVenue), nil
}

func (c *Controller) ServeVenues(r *http.Request) *Response {
	venues, err := c.DB.Venues()
	if err != nil {
		return serverError(r, err)
	}
	counts, err := c.upcomingForVenues(venues)
	if err != nil {
		return serverError(r, err)
	}
	return &Response{
		template: "venues.tmpl",
		data:     &templateData{Areas: groupAreas(venues, counts)},
	}
}

func (c *Controller) ServeVenueSearch(r *http.Request) *Response {
	term := searchTerm(r)
	venues, err := c.DB.SearchVenues(term)
	if err != nil {
		return serverError(r, err)
	}
	counts, err := c.upcomingForVenues(venues)
	if err != nil {
		return serverError(r, err)
	}
	entities := make([]showagg.Entity, 0, len(venues))
	for _, v := range venues {
		entities = append(entities, v.Entity())
	}
	return &Response{
		template: "search_venues.tmpl",
		data: &templateData{
			SearchTerm: term,
			Results:    summaries(entities, counts),
		},
	}
}

func (c *Controller) ServeVenue(r *http.Request) *Response {
	id, ok := pathID(r)
	if !ok {
		return notFound()
	}
	venue, err := c.DB.GetVenue(id)
	if errors.Is(err, db.ErrNotFound) {
		return notFound()
	}
	if err != nil {
		return serverError(r, err)
	}
	shows, err := c.DB.ShowsForVenue(id)
	if err != nil {
		return serverError(r, err)
	}
	artists, err := c.DB.ArtistEntities(uniqueIDs(shows, showArtistID))
	if err != nil {
		return serverError(r, err)
	}
	lookup := showagg.NewIndex([]showagg.Entity{venue.Entity()}, artists)
	summary, err := showagg.Detail(c.now(), db.ShowValues(shows), showagg.KindVenue, id, lookup)
	if err != nil {
		return serverError(r, fmt.Errorf("summarise venue %d: %w", id, err))
	}
	return &Response{
		template: "show_venue.tmpl",
		data:     &templateData{Venue: venue, Summary: summary},
	}
}

func venueFormData(form *venueForm) *templateData {
	return &templateData{
		VenueForm: form,
		States:    states,
		Genres:    genres,
	}
}

func (c *Controller) ServeVenueCreate(_ *http.Request) *Response {
	return &Response{
		template: "new_venue.tmpl",
		data:     venueFormData(&venueForm{}),
	}
}

func (c *Controller) ServeVenueCreateDo(r *http.Request) *Response {
	var form venueForm
	if err := decodeForm(r, &form); err != nil {
		return &Response{code: http.StatusBadRequest, err: err.Error()}
	}
	if errs := form.validate(); len(errs) > 0 {
		return &Response{
			template: "new_venue.tmpl",
			data:     venueFormData(&form),
			flashW:   errs,
			code:     http.StatusBadRequest,
		}
	}
	if err := c.DB.CreateVenue(form.venue()); err != nil {
		logWriteErr(r, "creating venue", err)
		return &Response{
			template: "new_venue.tmpl",
			data:     venueFormData(&form),
			flashW:   []string{fmt.Sprintf("An error occurred. Venue %s could not be listed.", form.Name)},
			code:     http.StatusBadRequest,
		}
	}
	return &Response{
		redirect: "/",
		flashN:   []string{fmt.Sprintf("Venue %s was successfully listed!", form.Name)},
	}
}

func (c *Controller) ServeVenueEdit(r *http.Request) *Response {
	id, ok := pathID(r)
	if !ok {
		return notFound()
	}
	venue, err := c.DB.GetVenue(id)
	if errors.Is(err, db.ErrNotFound) {
		return notFound()
	}
	if err != nil {
		return serverError(r, err)
	}
	data := venueFormData(venueFormFrom(venue))
	data.Venue = venue
	return &Response{template: "edit_venue.tmpl", data: data}
}

func (c *Controller) ServeVenueEditDo(r *http.Request) *Response {
	id, ok := pathID(r)
	if !ok {
		return notFound()
	}
	venue, err := c.DB.GetVenue(id)
	if errors.Is(err, db.ErrNotFound) {
		return notFound()
	}
	if err != nil {
		return serverError(r, err)
	}
	var form venueForm
	if err := decodeForm(r, &form); err != nil {
		return &Response{code: http.StatusBadRequest, err: err.Error()}
	}
	data := venueFormData(&form)
	data.Venue = venue
	if errs := form.validate(); len(errs) > 0 {
		return &Response{
			template: "edit_venue.tmpl",
			data:     data,
			flashW:   errs,
			code:     http.StatusBadRequest,
		}
	}
	err = c.DB.UpdateVenue(id, form.venue())
	if errors.Is(err, db.ErrNotFound) {
		return notFound()
	}
	if err != nil {
		logWriteErr(r, "updating venue", err)
		return &Response{
			template: "edit_venue.tmpl",
			data:     data,
			flashW:   []string{fmt.Sprintf("An error occurred. Venue %s could not be updated.", form.Name)},
			code:     http.StatusBadRequest,
		}
	}
	return &Response{
		redirect: fmt.Sprintf("/venues/%d", id),
		flashN:   []string{fmt.Sprintf("Venue %s was successfully updated!", form.Name)},
	}
}

func (c *Controller) ServeVenueDelete(r *http.Request) *Response {
	id, ok := pathID(r)
	if !ok {
		return notFound()
	}
	venue, err := c.DB.GetVenue(id)
	if errors.Is(err, db.ErrNotFound) {
		return notFound()
	}
	if err != nil {
		return serverError(r, err)
	}
	err = c.DB.DeleteVenue(id)
	if errors.Is(err, db.ErrNotFound) {
		return notFound()
	}
	if err != nil {
		logWriteErr(r, "deleting venue", err)
		data, herr := c.homeData()
		if herr != nil {
			return serverError(r, herr)
		}
		return &Response{
			template: "home.tmpl",
			data:     data,
			flashW:   []string{fmt.Sprintf("An error occurred. Venue %s could not be deleted.", venue.Name)},
			code:     http.StatusBadRequest,
		}
	}
	return &Response{
		redirect: "/",
		flashN:   []string{fmt.Sprintf("Venue %s was successfully deleted!", venue.Name)},
	}
}
