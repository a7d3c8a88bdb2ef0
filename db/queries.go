package db

import (
	"strings"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
	"github.com/rainycape/unidecode"

	"go.fyyur.app/fyyur/showagg"
)

// Venues returns every venue ordered so that venues in the same area are
// next to each other
func (db *DB) Venues() ([]*Venue, error) {
	var venues []*Venue
	err := db.
		Order("state, city, id").
		Find(&venues).
		Error
	return venues, errors.Wrap(err, "find venues")
}

func (db *DB) Artists() ([]*Artist, error) {
	var artists []*Artist
	err := db.
		Order("id").
		Find(&artists).
		Error
	return artists, errors.Wrap(err, "find artists")
}

func (db *DB) RecentVenues(n int) ([]*Venue, error) {
	var venues []*Venue
	err := db.
		Order("created_at DESC, id DESC").
		Limit(n).
		Find(&venues).
		Error
	return venues, errors.Wrap(err, "find recent venues")
}

func (db *DB) RecentArtists(n int) ([]*Artist, error) {
	var artists []*Artist
	err := db.
		Order("created_at DESC, id DESC").
		Limit(n).
		Find(&artists).
		Error
	return artists, errors.Wrap(err, "find recent artists")
}

func (db *DB) GetVenue(id int) (*Venue, error) {
	var venue Venue
	err := db.First(&venue, id).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, errors.Wrapf(ErrNotFound, "venue %d", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get venue %d", id)
	}
	return &venue, nil
}

func (db *DB) GetArtist(id int) (*Artist, error) {
	var artist Artist
	err := db.First(&artist, id).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, errors.Wrapf(ErrNotFound, "artist %d", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get artist %d", id)
	}
	return &artist, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likeArgs(term string) (string, string) {
	lower := strings.ToLower(term)
	return "%" + likeEscaper.Replace(lower) + "%",
		"%" + likeEscaper.Replace(strings.ToLower(unidecode.Unidecode(term))) + "%"
}

const searchWhere = `LOWER(name) LIKE ? ESCAPE '\' OR LOWER(name_u_dec) LIKE ? ESCAPE '\'`

// SearchVenues matches a partial name, ignoring case and accents. an empty
// term matches everything
func (db *DB) SearchVenues(term string) ([]*Venue, error) {
	plain, udec := likeArgs(term)
	var venues []*Venue
	err := db.
		Where(searchWhere, plain, udec).
		Order("name, id").
		Find(&venues).
		Error
	return venues, errors.Wrapf(err, "search venues %q", term)
}

func (db *DB) SearchArtists(term string) ([]*Artist, error) {
	plain, udec := likeArgs(term)
	var artists []*Artist
	err := db.
		Where(searchWhere, plain, udec).
		Order("name, id").
		Find(&artists).
		Error
	return artists, errors.Wrapf(err, "search artists %q", term)
}

func (db *DB) ShowsForVenue(id int) ([]*Show, error) {
	return db.ShowsForVenues([]int{id})
}

func (db *DB) ShowsForArtist(id int) ([]*Show, error) {
	return db.ShowsForArtists([]int{id})
}

func (db *DB) ShowsForVenues(ids []int) ([]*Show, error) {
	return db.showsWhere("venue_id IN (?)", ids)
}

func (db *DB) ShowsForArtists(ids []int) ([]*Show, error) {
	return db.showsWhere("artist_id IN (?)", ids)
}

func (db *DB) showsWhere(where string, ids []int) ([]*Show, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var shows []*Show
	err := db.
		Where(where, ids).
		Order("start_time, id").
		Find(&shows).
		Error
	return shows, errors.Wrap(err, "find shows")
}

func (db *DB) AllShows() ([]*Show, error) {
	var shows []*Show
	err := db.
		Order("start_time, id").
		Find(&shows).
		Error
	return shows, errors.Wrap(err, "find shows")
}

// VenueEntities loads the display fields of the venues with ids, or of every
// venue if ids is nil
func (db *DB) VenueEntities(ids []int) ([]showagg.Entity, error) {
	var venues []*Venue
	q := db.Select("id, name, image_link")
	if ids != nil {
		if len(ids) == 0 {
			return nil, nil
		}
		q = q.Where("id IN (?)", ids)
	}
	if err := q.Find(&venues).Error; err != nil {
		return nil, errors.Wrap(err, "find venue entities")
	}
	ret := make([]showagg.Entity, 0, len(venues))
	for _, v := range venues {
		ret = append(ret, v.Entity())
	}
	return ret, nil
}

func (db *DB) ArtistEntities(ids []int) ([]showagg.Entity, error) {
	var artists []*Artist
	q := db.Select("id, name, image_link")
	if ids != nil {
		if len(ids) == 0 {
			return nil, nil
		}
		q = q.Where("id IN (?)", ids)
	}
	if err := q.Find(&artists).Error; err != nil {
		return nil, errors.Wrap(err, "find artist entities")
	}
	ret := make([]showagg.Entity, 0, len(artists))
	for _, a := range artists {
		ret = append(ret, a.Entity())
	}
	return ret, nil
}

type Stats struct {
	Venues, Artists, Shows int
}

func (db *DB) Stats() (Stats, error) {
	var stats Stats
	if err := db.Model(Venue{}).Count(&stats.Venues).Error; err != nil {
		return Stats{}, errors.Wrap(err, "count venues")
	}
	if err := db.Model(Artist{}).Count(&stats.Artists).Error; err != nil {
		return Stats{}, errors.Wrap(err, "count artists")
	}
	if err := db.Model(Show{}).Count(&stats.Shows).Error; err != nil {
		return Stats{}, errors.Wrap(err, "count shows")
	}
	return stats, nil
}
