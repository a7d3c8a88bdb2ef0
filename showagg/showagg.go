// Package showagg partitions shows around a reference instant and builds the
// per venue and per artist summaries the listing and detail pages render
package showagg

import (
	"errors"
	"fmt"
	"time"

	"go.fyyur.app/fyyur/showtime"
)

// ErrLookup is matched by every error caused by a show referencing a venue or
// artist that could not be resolved
var ErrLookup = errors.New("lookup")

type Kind string

const (
	KindVenue  Kind = "venue"
	KindArtist Kind = "artist"
)

type LookupError struct {
	Kind Kind
	ID   int
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup %s %d: not found", e.Kind, e.ID)
}

func (e *LookupError) Is(target error) bool {
	return target == ErrLookup
}

type Show struct {
	VenueID   int
	ArtistID  int
	StartTime time.Time
}

func (s Show) ownerID(k Kind) int {
	if k == KindVenue {
		return s.VenueID
	}
	return s.ArtistID
}

// Entity is the display side of a venue or an artist
type Entity struct {
	ID        int
	Name      string
	ImageLink string
}

// Lookup resolves the display fields of venues and artists by id
type Lookup interface {
	Venue(id int) (Entity, bool)
	Artist(id int) (Entity, bool)
}

// Index is a Lookup backed by maps
type Index struct {
	venues  map[int]Entity
	artists map[int]Entity
}

func NewIndex(venues, artists []Entity) *Index {
	idx := &Index{
		venues:  make(map[int]Entity, len(venues)),
		artists: make(map[int]Entity, len(artists)),
	}
	for _, v := range venues {
		idx.venues[v.ID] = v
	}
	for _, a := range artists {
		idx.artists[a.ID] = a
	}
	return idx
}

func (idx *Index) Venue(id int) (Entity, bool) {
	e, ok := idx.venues[id]
	return e, ok
}

func (idx *Index) Artist(id int) (Entity, bool) {
	e, ok := idx.artists[id]
	return e, ok
}

func resolve(l Lookup, k Kind, id int) (Entity, error) {
	var e Entity
	var ok bool
	switch k {
	case KindVenue:
		e, ok = l.Venue(id)
	case KindArtist:
		e, ok = l.Artist(id)
	}
	if !ok {
		return Entity{}, &LookupError{Kind: k, ID: id}
	}
	return e, nil
}

func counterpart(k Kind) Kind {
	if k == KindVenue {
		return KindArtist
	}
	return KindVenue
}

// IsUpcoming and IsPast are both strict. a show starting exactly at now is
// neither
func IsUpcoming(now time.Time, s Show) bool { return s.StartTime.After(now) }
func IsPast(now time.Time, s Show) bool     { return s.StartTime.Before(now) }

// UpcomingCount counts the shows owned by the venue or artist id which start
// after now. it is the single owner form of UpcomingCounts, for callers
// holding one venue or artist's shows without a lookup
func UpcomingCount(now time.Time, shows []Show, owner Kind, id int) int {
	var n int
	for _, s := range shows {
		if s.ownerID(owner) == id && IsUpcoming(now, s) {
			n++
		}
	}
	return n
}

// UpcomingCounts is UpcomingCount for every owner in one pass. owners without
// upcoming shows are absent from the map
func UpcomingCounts(now time.Time, shows []Show, owner Kind) map[int]int {
	counts := map[int]int{}
	for _, s := range shows {
		if IsUpcoming(now, s) {
			counts[s.ownerID(owner)]++
		}
	}
	return counts
}

type Entry struct {
	CounterpartID        int
	CounterpartName      string
	CounterpartImageLink string
	StartTime            time.Time
	StartTimeText        string
}

type Summary struct {
	Upcoming      []Entry
	Past          []Entry
	UpcomingCount int
	PastCount     int
}

// Detail splits the shows owned by the venue or artist id into upcoming and
// past, keeping input order inside each bucket. every entry carries the other
// side of the show, so a venue summary lists artists and the reverse
func Detail(now time.Time, shows []Show, owner Kind, id int, l Lookup) (Summary, error) {
	sum := Summary{
		Upcoming: []Entry{},
		Past:     []Entry{},
	}
	other := counterpart(owner)
	for _, s := range shows {
		if s.ownerID(owner) != id {
			continue
		}
		e, err := resolve(l, other, s.ownerID(other))
		if err != nil {
			return Summary{}, fmt.Errorf("show at %s: %w", showtime.Text(s.StartTime), err)
		}
		upcoming, past := IsUpcoming(now, s), IsPast(now, s)
		if !upcoming && !past {
			continue
		}
		entry := Entry{
			CounterpartID:        e.ID,
			CounterpartName:      e.Name,
			CounterpartImageLink: e.ImageLink,
			StartTime:            s.StartTime,
			StartTimeText:        showtime.Text(s.StartTime),
		}
		if upcoming {
			sum.Upcoming = append(sum.Upcoming, entry)
		} else {
			sum.Past = append(sum.Past, entry)
		}
	}
	sum.UpcomingCount = len(sum.Upcoming)
	sum.PastCount = len(sum.Past)
	return sum, nil
}

type ListingEntry struct {
	VenueID         int
	VenueName       string
	ArtistID        int
	ArtistName      string
	ArtistImageLink string
	StartTime       time.Time
}

// Listing flattens every show regardless of time
func Listing(shows []Show, l Lookup) ([]ListingEntry, error) {
	ret := make([]ListingEntry, 0, len(shows))
	for _, s := range shows {
		venue, err := resolve(l, KindVenue, s.VenueID)
		if err != nil {
			return nil, err
		}
		artist, err := resolve(l, KindArtist, s.ArtistID)
		if err != nil {
			return nil, err
		}
		ret = append(ret, ListingEntry{
			VenueID:         venue.ID,
			VenueName:       venue.Name,
			ArtistID:        artist.ID,
			ArtistName:      artist.Name,
			ArtistImageLink: artist.ImageLink,
			StartTime:       s.StartTime,
		})
	}
	return ret, nil
}
