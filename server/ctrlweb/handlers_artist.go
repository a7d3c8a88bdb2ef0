package ctrlweb

import (
	"errors"
	"fmt"
	"net/http"

	"go.fyyur.app/fyyur/db"
	"go.fyyur.app/fyyur/showagg"
)

func (c *Controller) artistSummaries(artists []*db.Artist) ([]*entitySummary, error) {
	ids := make([]int, 0, len(artists))
	entities := make([]showagg.Entity, 0, len(artists))
	for _, a := range artists {
		ids = append(ids, a.ID)
		entities = append(entities, a.Entity())
	}
	shows, err := c.DB.ShowsForArtists(ids)
	if err != nil {
		return nil, err
	}
	counts := showagg.UpcomingCounts(c.now(), db.ShowValues(shows), showagg.KindArtist)
	return summaries(entities, counts), nil
}

func (c *Controller) ServeArtists(r *http.Request) *Response {
	artists, err := c.DB.Artists()
	if err != nil {
		return serverError(r, err)
	}
	sums, err := c.artistSummaries(artists)
	if err != nil {
		return serverError(r, err)
	}
	return &Response{
		template: "artists.tmpl",
		data:     &templateData{Artists: sums},
	}
}

func (c *Controller) ServeArtistSearch(r *http.Request) *Response {
	term := searchTerm(r)
	artists, err := c.DB.SearchArtists(term)
	if err != nil {
		return serverError(r, err)
	}
	sums, err := c.artistSummaries(artists)
	if err != nil {
		return serverError(r, err)
	}
	return &Response{
		template: "search_artists.tmpl",
		data: &templateData{
			SearchTerm: term,
			Results:    sums,
		},
	}
}

func (c *Controller) ServeArtist(r *http.Request) *Response {
	id, ok := pathID(r)
	if !ok {
		return notFound()
	}
	artist, err := c.DB.GetArtist(id)
	if errors.Is(err, db.ErrNotFound) {
		return notFound()
	}
	if err != nil {
		return serverError(r, err)
	}
	shows, err := c.DB.ShowsForArtist(id)
	if err != nil {
		return serverError(r, err)
	}
	venues, err := c.DB.VenueEntities(uniqueIDs(shows, showVenueID))
	if err != nil {
		return serverError(r, err)
	}
	lookup := showagg.NewIndex(venues, []showagg.Entity{artist.Entity()})
	summary, err := showagg.Detail(c.now(), db.ShowValues(shows), showagg.KindArtist, id, lookup)
	if err != nil {
		return serverError(r, fmt.Errorf("summarise artist %d: %w", id, err))
	}
	return &Response{
		template: "show_artist.tmpl",
		data:     &templateData{Artist: artist, Summary: summary},
	}
}

func artistFormData(form *artistForm) *templateData {
	return &templateData{
		ArtistForm: form,
		States:     states,
		Genres:     genres,
	}
}

func (c *Controller) ServeArtistCreate(_ *http.Request) *Response {
	return &Response{
		template: "new_artist.tmpl",
		data:     artistFormData(&artistForm{}),
	}
}

func (c *Controller) ServeArtistCreateDo(r *http.Request) *Response {
	var form artistForm
	if err := decodeForm(r, &form); err != nil {
		return &Response{code: http.StatusBadRequest, err: err.Error()}
	}
	if errs := form.validate(); len(errs) > 0 {
		return &Response{
			template: "new_artist.tmpl",
			data:     artistFormData(&form),
			flashW:   errs,
			code:     http.StatusBadRequest,
		}
	}
	if err := c.DB.CreateArtist(form.artist()); err != nil {
		logWriteErr(r, "creating artist", err)
		return &Response{
			template: "new_artist.tmpl",
			data:     artistFormData(&form),
			flashW:   []string{fmt.Sprintf("An error occurred. Artist %s could not be listed.", form.Name)},
			code:     http.StatusBadRequest,
		}
	}
	return &Response{
		redirect: "/",
		flashN:   []string{fmt.Sprintf("Artist %s was successfully listed!", form.Name)},
	}
}

func (c *Controller) ServeArtistEdit(r *http.Request) *Response {
	id, ok := pathID(r)
	if !ok {
		return notFound()
	}
	artist, err := c.DB.GetArtist(id)
	if errors.Is(err, db.ErrNotFound) {
		return notFound()
	}
	if err != nil {
		return serverError(r, err)
	}
	data := artistFormData(artistFormFrom(artist))
	data.Artist = artist
	return &Response{template: "edit_artist.tmpl", data: data}
}

func (c *Controller) ServeArtistEditDo(r *http.Request) *Response {
	id, ok := pathID(r)
	if !ok {
		return notFound()
	}
	artist, err := c.DB.GetArtist(id)
	if errors.Is(err, db.ErrNotFound) {
		return notFound()
	}
	if err != nil {
		return serverError(r, err)
	}
	var form artistForm
	if err := decodeForm(r, &form); err != nil {
		return &Response{code: http.StatusBadRequest, err: err.Error()}
	}
	data := artistFormData(&form)
	data.Artist = artist
	if errs := form.validate(); len(errs) > 0 {
		return &Response{
			template: "edit_artist.tmpl",
			data:     data,
			flashW:   errs,
			code:     http.StatusBadRequest,
		}
	}
	err = c.DB.UpdateArtist(id, form.artist())
	if errors.Is(err, db.ErrNotFound) {
		return notFound()
	}
	if err != nil {
		logWriteErr(r, "updating artist", err)
		return &Response{
			template: "edit_artist.tmpl",
			data:     data,
			flashW:   []string{fmt.Sprintf("An error occurred. Artist %s could not be updated.", form.Name)},
			code:     http.StatusBadRequest,
		}
	}
	return &Response{
		redirect: fmt.Sprintf("/artists/%d", id),
		flashN:   []string{fmt.Sprintf("Artist %s was successfully updated!", form.Name)},
	}
}
