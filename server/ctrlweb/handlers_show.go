package ctrlweb

import (
	"fmt"
	"net/http"

	"go.fyyur.app/fyyur/db"
	"go.fyyur.app/fyyur/showagg"
)

func (c *Controller) ServeShows(r *http.Request) *Response {
	shows, err := c.DB.AllShows()
	if err != nil {
		return serverError(r, err)
	}
	venues, err := c.DB.VenueEntities(uniqueIDs(shows, showVenueID))
	if err != nil {
		return serverError(r, err)
	}
	artists, err := c.DB.ArtistEntities(uniqueIDs(shows, showArtistID))
	if err != nil {
		return serverError(r, err)
	}
	listing, err := showagg.Listing(db.ShowValues(shows), showagg.NewIndex(venues, artists))
	if err != nil {
		return serverError(r, fmt.Errorf("list shows: %w", err))
	}
	return &Response{
		template: "shows.tmpl",
		data:     &templateData{Shows: listing},
	}
}

func (c *Controller) showFormData(form *showForm) (*templateData, error) {
	venues, err := c.DB.VenueEntities(nil)
	if err != nil {
		return nil, err
	}
	artists, err := c.DB.ArtistEntities(nil)
	if err != nil {
		return nil, err
	}
	return &templateData{
		ShowForm:      form,
		VenueChoices:  venues,
		ArtistChoices: artists,
	}, nil
}

func (c *Controller) ServeShowCreate(r *http.Request) *Response {
	data, err := c.showFormData(&showForm{})
	if err != nil {
		return serverError(r, err)
	}
	return &Response{template: "new_show.tmpl", data: data}
}

func (c *Controller) ServeShowCreateDo(r *http.Request) *Response {
	var form showForm
	if err := decodeForm(r, &form); err != nil {
		return &Response{code: http.StatusBadRequest, err: err.Error()}
	}
	data, err := c.showFormData(&form)
	if err != nil {
		return serverError(r, err)
	}
	show, errs := form.show(c.now(), c.times)
	if len(errs) > 0 {
		return &Response{
			template: "new_show.tmpl",
			data:     data,
			flashW:   errs,
			code:     http.StatusBadRequest,
		}
	}
	if err := c.DB.CreateShow(show); err != nil {
		logWriteErr(r, "creating show", err)
		return &Response{
			template: "new_show.tmpl",
			data:     data,
			flashW:   []string{"An error occurred. Show could not be listed."},
			code:     http.StatusBadRequest,
		}
	}
	return &Response{
		redirect: "/",
		flashN:   []string{"Show was successfully listed!"},
	}
}
