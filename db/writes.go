package db

import (
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

func (db *DB) CreateVenue(venue *Venue) error {
	return db.WithTx(func(tx *gorm.DB) error {
		return errors.Wrap(tx.Create(venue).Error, "create venue")
	})
}

// UpdateVenue replaces the editable fields of the venue with id
func (db *DB) UpdateVenue(id int, in *Venue) error {
	return db.WithTx(func(tx *gorm.DB) error {
		var venue Venue
		err := tx.First(&venue, id).Error
		if gorm.IsRecordNotFoundError(err) {
			return errors.Wrapf(ErrNotFound, "venue %d", id)
		}
		if err != nil {
			return errors.Wrapf(err, "get venue %d", id)
		}
		venue.Name = in.Name
		venue.City = in.City
		venue.State = in.State
		venue.Address = in.Address
		venue.Phone = in.Phone
		venue.Genres = in.Genres
		venue.ImageLink = in.ImageLink
		venue.FacebookLink = in.FacebookLink
		venue.WebsiteLink = in.WebsiteLink
		venue.SeekingTalent = in.SeekingTalent
		venue.SeekingDescription = in.SeekingDescription
		return errors.Wrapf(tx.Save(&venue).Error, "save venue %d", id)
	})
}

// DeleteVenue deletes the venue with id and its shows
func (db *DB) DeleteVenue(id int) error {
	return db.WithTx(func(tx *gorm.DB) error {
		if err := tx.Where("venue_id=?", id).Delete(&Show{}).Error; err != nil {
			return errors.Wrapf(err, "delete shows of venue %d", id)
		}
		q := tx.Where("id=?", id).Delete(&Venue{})
		if err := q.Error; err != nil {
			return errors.Wrapf(err, "delete venue %d", id)
		}
		if q.RowsAffected == 0 {
			return errors.Wrapf(ErrNotFound, "venue %d", id)
		}
		return nil
	})
}

func (db *DB) CreateArtist(artist *Artist) error {
	return db.WithTx(func(tx *gorm.DB) error {
		return errors.Wrap(tx.Create(artist).Error, "create artist")
	})
}

func (db *DB) UpdateArtist(id int, in *Artist) error {
	return db.WithTx(func(tx *gorm.DB) error {
		var artist Artist
		err := tx.First(&artist, id).Error
		if gorm.IsRecordNotFoundError(err) {
			return errors.Wrapf(ErrNotFound, "artist %d", id)
		}
		if err != nil {
			return errors.Wrapf(err, "get artist %d", id)
		}
		artist.Name = in.Name
		artist.City = in.City
		artist.State = in.State
		artist.Phone = in.Phone
		artist.Genres = in.Genres
		artist.ImageLink = in.ImageLink
		artist.FacebookLink = in.FacebookLink
		artist.WebsiteLink = in.WebsiteLink
		artist.SeekingVenue = in.SeekingVenue
		artist.SeekingDescription = in.SeekingDescription
		return errors.Wrapf(tx.Save(&artist).Error, "save artist %d", id)
	})
}

// CreateShow checks the venue and artist exist in the same transaction, so
// the error is readable even where the store doesn't enforce foreign keys
func (db *DB) CreateShow(show *Show) error {
	return db.WithTx(func(tx *gorm.DB) error {
		var n int
		if err := tx.Model(Venue{}).Where("id=?", show.VenueID).Count(&n).Error; err != nil {
			return errors.Wrap(err, "count venue")
		}
		if n == 0 {
			return errors.Wrapf(ErrNotFound, "venue %d", show.VenueID)
		}
		if err := tx.Model(Artist{}).Where("id=?", show.ArtistID).Count(&n).Error; err != nil {
			return errors.Wrap(err, "count artist")
		}
		if n == 0 {
			return errors.Wrapf(ErrNotFound, "artist %d", show.ArtistID)
		}
		return errors.Wrap(tx.Create(show).Error, "create show")
	})
}
