//nolint:lll // struct tags get very long and can't be split
package db

import (
	"strings"
	"time"

	"github.com/rainycape/unidecode"

	"go.fyyur.app/fyyur/showagg"
)

func splitGenres(in string) []string {
	if in == "" {
		return []string{}
	}
	return strings.Split(in, ",")
}

func joinGenres(in []string) string {
	return strings.Join(in, ",")
}

// decoded returns the ascii version of in if it differs, so "Björk" can be
// found with "bjork"
func decoded(in string) string {
	if u := unidecode.Unidecode(in); u != in {
		return u
	}
	return ""
}

type Venue struct {
	ID                 int `gorm:"primary_key"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Name               string `gorm:"not null; index" sql:"default: null"`
	NameUDec           string `sql:"default: null"`
	City               string `gorm:"not null; index:idx_venue_area" sql:"default: null"`
	State              string `gorm:"not null; index:idx_venue_area" sql:"default: null"`
	Address            string `gorm:"not null" sql:"default: null"`
	Phone              string
	Genres             string
	ImageLink          string
	FacebookLink       string
	WebsiteLink        string
	SeekingTalent      bool
	SeekingDescription string
	Shows              []*Show `gorm:"foreignkey:VenueID"`
}

func (v *Venue) BeforeSave() error {
	v.NameUDec = decoded(v.Name)
	return nil
}

func (v *Venue) GenreList() []string       { return splitGenres(v.Genres) }
func (v *Venue) SetGenres(genres []string) { v.Genres = joinGenres(genres) }

func (v *Venue) Entity() showagg.Entity {
	return showagg.Entity{ID: v.ID, Name: v.Name, ImageLink: v.ImageLink}
}

type Artist struct {
	ID                 int `gorm:"primary_key"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Name               string `gorm:"not null; index" sql:"default: null"`
	NameUDec           string `sql:"default: null"`
	City               string `gorm:"not null" sql:"default: null"`
	State              string `gorm:"not null" sql:"default: null"`
	Phone              string
	Genres             string
	ImageLink          string
	FacebookLink       string
	WebsiteLink        string
	SeekingVenue       bool
	SeekingDescription string
	Shows              []*Show `gorm:"foreignkey:ArtistID"`
}

func (a *Artist) BeforeSave() error {
	a.NameUDec = decoded(a.Name)
	return nil
}

func (a *Artist) GenreList() []string       { return splitGenres(a.Genres) }
func (a *Artist) SetGenres(genres []string) { a.Genres = joinGenres(genres) }

func (a *Artist) Entity() showagg.Entity {
	return showagg.Entity{ID: a.ID, Name: a.Name, ImageLink: a.ImageLink}
}

type Show struct {
	ID        int `gorm:"primary_key"`
	CreatedAt time.Time
	Venue     *Venue
	VenueID   int `gorm:"not null; index" sql:"default: null; type:int REFERENCES venues(id) ON DELETE CASCADE"`
	Artist    *Artist
	ArtistID  int       `gorm:"not null; index" sql:"default: null; type:int REFERENCES artists(id) ON DELETE CASCADE"`
	StartTime time.Time `gorm:"not null; index"`
}

func (s *Show) AggShow() showagg.Show {
	return showagg.Show{
		VenueID:   s.VenueID,
		ArtistID:  s.ArtistID,
		StartTime: s.StartTime,
	}
}

func ShowValues(shows []*Show) []showagg.Show {
	ret := make([]showagg.Show, 0, len(shows))
	for _, s := range shows {
		ret = append(ret, s.AggShow())
	}
	return ret
}

type SettingKey string

const (
	SessionKey SettingKey = "session_key"
)

type Setting struct {
	Key   SettingKey `gorm:"not null; primary_key; auto_increment:false" sql:"default: null"`
	Value string     `sql:"default: null"`
}
