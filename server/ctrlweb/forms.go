package ctrlweb

import (
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"go.fyyur.app/fyyur/db"
	"go.fyyur.app/fyyur/showtime"
)

func isChecked(in string) bool {
	switch strings.ToLower(strings.TrimSpace(in)) {
	case "on", "y", "yes", "true", "1":
		return true
	}
	return false
}

// formHook flattens posted value lists into single strings and checkbox
// flags. list fields keep every non blank value
func formHook(_, to reflect.Type, data interface{}) (interface{}, error) {
	vals, ok := data.([]string)
	if !ok {
		return data, nil
	}
	switch to.Kind() {
	case reflect.String:
		if len(vals) == 0 {
			return "", nil
		}
		return strings.TrimSpace(vals[0]), nil
	case reflect.Bool:
		if len(vals) == 0 {
			return false, nil
		}
		return isChecked(vals[0]), nil
	case reflect.Slice:
		ret := make([]string, 0, len(vals))
		for _, v := range vals {
			if v = strings.TrimSpace(v); v != "" {
				ret = append(ret, v)
			}
		}
		return ret, nil
	}
	return data, nil
}

func decodeForm(r *http.Request, out interface{}) error {
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parse form: %w", err)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       formHook,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("create decoder: %w", err)
	}
	if err := dec.Decode(map[string][]string(r.PostForm)); err != nil {
		return fmt.Errorf("decode form: %w", err)
	}
	return nil
}

type formErrors []string

func (fe *formErrors) add(format string, a ...interface{}) {
	*fe = append(*fe, fmt.Sprintf(format, a...))
}

func (fe *formErrors) required(field, value string) {
	if value == "" {
		fe.add("please enter %s", field)
	}
}

func (fe *formErrors) state(value string) {
	if value != "" && !isState(value) {
		fe.add("%q is not a valid state", value)
	}
}

func (fe *formErrors) genres(values []string) {
	for _, g := range values {
		if !isGenre(g) {
			fe.add("%q is not a valid genre", g)
		}
	}
}

// link checks an optional link is an absolute http(s) url
func (fe *formErrors) link(field, value string) {
	if value == "" {
		return
	}
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		fe.add("%s must be a http or https link", field)
	}
}

type venueForm struct {
	Name               string   `mapstructure:"name"`
	City               string   `mapstructure:"city"`
	State              string   `mapstructure:"state"`
	Address            string   `mapstructure:"address"`
	Phone              string   `mapstructure:"phone"`
	Genres             []string `mapstructure:"genres"`
	ImageLink          string   `mapstructure:"image_link"`
	FacebookLink       string   `mapstructure:"facebook_link"`
	WebsiteLink        string   `mapstructure:"website_link"`
	SeekingTalent      bool     `mapstructure:"seeking_talent"`
	SeekingDescription string   `mapstructure:"seeking_description"`
}

func venueFormFrom(v *db.Venue) *venueForm {
	return &venueForm{
		Name:               v.Name,
		City:               v.City,
		State:              v.State,
		Address:            v.Address,
		Phone:              v.Phone,
		Genres:             v.GenreList(),
		ImageLink:          v.ImageLink,
		FacebookLink:       v.FacebookLink,
		WebsiteLink:        v.WebsiteLink,
		SeekingTalent:      v.SeekingTalent,
		SeekingDescription: v.SeekingDescription,
	}
}

func (f *venueForm) validate() formErrors {
	var fe formErrors
	fe.required("a name", f.Name)
	fe.required("a city", f.City)
	fe.required("a state", f.State)
	fe.required("an address", f.Address)
	fe.state(f.State)
	fe.genres(f.Genres)
	fe.link("image link", f.ImageLink)
	fe.link("facebook link", f.FacebookLink)
	fe.link("website link", f.WebsiteLink)
	return fe
}

func (f *venueForm) venue() *db.Venue {
	venue := &db.Venue{
		Name:               f.Name,
		City:               f.City,
		State:              f.State,
		Address:            f.Address,
		Phone:              f.Phone,
		ImageLink:          f.ImageLink,
		FacebookLink:       f.FacebookLink,
		WebsiteLink:        f.WebsiteLink,
		SeekingTalent:      f.SeekingTalent,
		SeekingDescription: f.SeekingDescription,
	}
	venue.SetGenres(f.Genres)
	return venue
}

type artistForm struct {
	Name               string   `mapstructure:"name"`
	City               string   `mapstructure:"city"`
	State              string   `mapstructure:"state"`
	Phone              string   `mapstructure:"phone"`
	Genres             []string `mapstructure:"genres"`
	ImageLink          string   `mapstructure:"image_link"`
	FacebookLink       string   `mapstructure:"facebook_link"`
	WebsiteLink        string   `mapstructure:"website_link"`
	SeekingVenue       bool     `mapstructure:"seeking_venue"`
	SeekingDescription string   `mapstructure:"seeking_description"`
}

func artistFormFrom(a *db.Artist) *artistForm {
	return &artistForm{
		Name:               a.Name,
		City:               a.City,
		State:              a.State,
		Phone:              a.Phone,
		Genres:             a.GenreList(),
		ImageLink:          a.ImageLink,
		FacebookLink:       a.FacebookLink,
		WebsiteLink:        a.WebsiteLink,
		SeekingVenue:       a.SeekingVenue,
		SeekingDescription: a.SeekingDescription,
	}
}

func (f *artistForm) validate() formErrors {
	var fe formErrors
	fe.required("a name", f.Name)
	fe.required("a city", f.City)
	fe.required("a state", f.State)
	fe.state(f.State)
	fe.genres(f.Genres)
	fe.link("image link", f.ImageLink)
	fe.link("facebook link", f.FacebookLink)
	fe.link("website link", f.WebsiteLink)
	return fe
}

func (f *artistForm) artist() *db.Artist {
	artist := &db.Artist{
		Name:               f.Name,
		City:               f.City,
		State:              f.State,
		Phone:              f.Phone,
		ImageLink:          f.ImageLink,
		FacebookLink:       f.FacebookLink,
		WebsiteLink:        f.WebsiteLink,
		SeekingVenue:       f.SeekingVenue,
		SeekingDescription: f.SeekingDescription,
	}
	artist.SetGenres(f.Genres)
	return artist
}

// showForm keeps ids as text so a bad id is a form error, not a decode error
type showForm struct {
	ArtistID  string `mapstructure:"artist_id"`
	VenueID   string `mapstructure:"venue_id"`
	StartTime string `mapstructure:"start_time"`
}

func parseID(fe *formErrors, field, value string) int {
	if value == "" {
		fe.add("please choose the %s", field)
		return 0
	}
	id, err := strconv.Atoi(value)
	if err != nil || id <= 0 {
		fe.add("%s must be a positive number", field)
		return 0
	}
	return id
}

func (f *showForm) show(now time.Time, times *showtime.Parser) (*db.Show, formErrors) {
	var fe formErrors
	artistID := parseID(&fe, "artist id", f.ArtistID)
	venueID := parseID(&fe, "venue id", f.VenueID)
	var start time.Time
	if f.StartTime == "" {
		fe.add("please enter a start time")
	} else {
		var err error
		if start, err = times.Parse(now, f.StartTime); err != nil {
			fe.add("could not understand start time %q", f.StartTime)
		}
	}
	if len(fe) > 0 {
		return nil, fe
	}
	return &db.Show{
		ArtistID:  artistID,
		VenueID:   venueID,
		StartTime: start,
	}, nil
}
