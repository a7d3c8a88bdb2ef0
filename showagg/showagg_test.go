package showagg

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC)

func testIndex() *Index {
	return NewIndex(
		[]Entity{
			{ID: 1, Name: "The Musical Hop", ImageLink: "hop.jpg"},
			{ID: 2, Name: "Park Square Live Music & Coffee", ImageLink: "park.jpg"},
		},
		[]Entity{
			{ID: 1, Name: "Guns N Petals", ImageLink: "gnp.jpg"},
			{ID: 2, Name: "Matt Quevedo", ImageLink: "mq.jpg"},
			{ID: 3, Name: "The Wild Sax Band", ImageLink: "sax.jpg"},
		},
	)
}

func TestDetailVenue(t *testing.T) {
	t.Parallel()

	showA := Show{VenueID: 1, ArtistID: 1, StartTime: now.Add(-24 * time.Hour)}
	showB := Show{VenueID: 1, ArtistID: 2, StartTime: now.Add(24 * time.Hour)}
	shows := []Show{showA, showB}

	sum, err := Detail(now, shows, KindVenue, 1, testIndex())
	require.NoError(t, err)

	require.Len(t, sum.Past, 1)
	require.Len(t, sum.Upcoming, 1)
	assert.Equal(t, 1, sum.PastCount)
	assert.Equal(t, 1, sum.UpcomingCount)

	assert.Equal(t, Entry{
		CounterpartID:        1,
		CounterpartName:      "Guns N Petals",
		CounterpartImageLink: "gnp.jpg",
		StartTime:            showA.StartTime,
		StartTimeText:        "2024-03-08 20:00:00",
	}, sum.Past[0])
	assert.Equal(t, Entry{
		CounterpartID:        2,
		CounterpartName:      "Matt Quevedo",
		CounterpartImageLink: "mq.jpg",
		StartTime:            showB.StartTime,
		StartTimeText:        "2024-03-10 20:00:00",
	}, sum.Upcoming[0])

	// input untouched
	assert.Equal(t, []Show{showA, showB}, shows)
}

func TestDetailArtistLooksUpVenues(t *testing.T) {
	t.Parallel()

	shows := []Show{
		{VenueID: 2, ArtistID: 3, StartTime: now.Add(-time.Hour)},
		{VenueID: 1, ArtistID: 3, StartTime: now.Add(time.Hour)},
		{VenueID: 1, ArtistID: 1, StartTime: now.Add(time.Hour)},
	}
	sum, err := Detail(now, shows, KindArtist, 3, testIndex())
	require.NoError(t, err)
	require.Len(t, sum.Past, 1)
	require.Len(t, sum.Upcoming, 1)
	assert.Equal(t, "Park Square Live Music & Coffee", sum.Past[0].CounterpartName)
	assert.Equal(t, "park.jpg", sum.Past[0].CounterpartImageLink)
	assert.Equal(t, 1, sum.Upcoming[0].CounterpartID)
}

func TestDetailNoShows(t *testing.T) {
	t.Parallel()

	sum, err := Detail(now, nil, KindArtist, 2, testIndex())
	require.NoError(t, err)
	assert.Empty(t, sum.Upcoming)
	assert.Empty(t, sum.Past)
	assert.NotNil(t, sum.Upcoming)
	assert.NotNil(t, sum.Past)
	assert.Zero(t, sum.UpcomingCount)
	assert.Zero(t, sum.PastCount)
}

func TestDetailBoundary(t *testing.T) {
	t.Parallel()

	shows := []Show{
		{VenueID: 1, ArtistID: 1, StartTime: now},
		{VenueID: 1, ArtistID: 1, StartTime: now.Add(time.Nanosecond)},
		{VenueID: 1, ArtistID: 1, StartTime: now.Add(-time.Nanosecond)},
	}
	sum, err := Detail(now, shows, KindVenue, 1, testIndex())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.UpcomingCount)
	assert.Equal(t, 1, sum.PastCount)
	assert.Equal(t, 1, UpcomingCount(now, shows, KindVenue, 1))
}

func TestDetailPartition(t *testing.T) {
	t.Parallel()

	var shows []Show
	for i := -5; i <= 5; i++ {
		shows = append(shows, Show{
			VenueID:   1 + (i+5)%2,
			ArtistID:  1 + (i+5)%3,
			StartTime: now.Add(time.Duration(i) * time.Hour),
		})
	}
	idx := testIndex()
	for _, owner := range []Kind{KindVenue, KindArtist} {
		for id := 1; id <= 3; id++ {
			sum, err := Detail(now, shows, owner, id, idx)
			require.NoError(t, err)
			for _, e := range sum.Upcoming {
				assert.True(t, e.StartTime.After(now))
			}
			for _, e := range sum.Past {
				assert.True(t, e.StartTime.Before(now))
			}

			var owned, atNow int
			for _, s := range shows {
				if s.ownerID(owner) != id {
					continue
				}
				owned++
				if s.StartTime.Equal(now) {
					atNow++
				}
			}
			assert.Equal(t, owned-atNow, sum.UpcomingCount+sum.PastCount)
			assert.Equal(t, UpcomingCount(now, shows, owner, id), sum.UpcomingCount)
			assert.Equal(t, UpcomingCounts(now, shows, owner)[id], sum.UpcomingCount)
		}
	}
}

func TestDetailKeepsInputOrder(t *testing.T) {
	t.Parallel()

	shows := []Show{
		{VenueID: 1, ArtistID: 3, StartTime: now.Add(3 * time.Hour)},
		{VenueID: 1, ArtistID: 1, StartTime: now.Add(1 * time.Hour)},
		{VenueID: 1, ArtistID: 2, StartTime: now.Add(2 * time.Hour)},
		{VenueID: 1, ArtistID: 2, StartTime: now.Add(2 * time.Hour)},
	}
	sum, err := Detail(now, shows, KindVenue, 1, testIndex())
	require.NoError(t, err)
	var ids []int
	for _, e := range sum.Upcoming {
		ids = append(ids, e.CounterpartID)
	}
	assert.Equal(t, []int{3, 1, 2, 2}, ids)
}

func TestDetailMissingArtist(t *testing.T) {
	t.Parallel()

	shows := []Show{
		{VenueID: 1, ArtistID: 1, StartTime: now.Add(time.Hour)},
		{VenueID: 1, ArtistID: 99, StartTime: now.Add(2 * time.Hour)},
	}
	sum, err := Detail(now, shows, KindVenue, 1, testIndex())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrLookup))
	assert.Empty(t, sum.Upcoming)

	var lerr *LookupError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, KindArtist, lerr.Kind)
	assert.Equal(t, 99, lerr.ID)
}

func TestDetailMissingArtistAtNow(t *testing.T) {
	t.Parallel()

	shows := []Show{
		{VenueID: 1, ArtistID: 99, StartTime: now},
	}
	_, err := Detail(now, shows, KindVenue, 1, testIndex())
	require.ErrorIs(t, err, ErrLookup)

	var lerr *LookupError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, 99, lerr.ID)
}

func TestUpcomingCount(t *testing.T) {
	t.Parallel()

	shows := []Show{
		{VenueID: 1, ArtistID: 1, StartTime: now.Add(time.Hour)},
		{VenueID: 1, ArtistID: 2, StartTime: now.Add(time.Hour)},
		{VenueID: 2, ArtistID: 2, StartTime: now.Add(time.Hour)},
		{VenueID: 1, ArtistID: 2, StartTime: now.Add(-time.Hour)},
	}
	assert.Equal(t, 2, UpcomingCount(now, shows, KindVenue, 1))
	assert.Equal(t, 1, UpcomingCount(now, shows, KindVenue, 2))
	assert.Equal(t, 0, UpcomingCount(now, shows, KindVenue, 3))
	assert.Equal(t, 2, UpcomingCount(now, shows, KindArtist, 2))
	assert.Equal(t, map[int]int{1: 1, 2: 2}, UpcomingCounts(now, shows, KindArtist))
}

func TestListing(t *testing.T) {
	t.Parallel()

	shows := []Show{
		{VenueID: 1, ArtistID: 1, StartTime: now.Add(-time.Hour)},
		{VenueID: 2, ArtistID: 3, StartTime: now},
		{VenueID: 1, ArtistID: 2, StartTime: now.Add(time.Hour)},
	}
	entries, err := Listing(shows, testIndex())
	require.NoError(t, err)
	require.Len(t, entries, len(shows))
	assert.Equal(t, ListingEntry{
		VenueID:         2,
		VenueName:       "Park Square Live Music & Coffee",
		ArtistID:        3,
		ArtistName:      "The Wild Sax Band",
		ArtistImageLink: "sax.jpg",
		StartTime:       now,
	}, entries[1])
}

func TestListingMissingVenue(t *testing.T) {
	t.Parallel()

	shows := []Show{{VenueID: 7, ArtistID: 1, StartTime: now}}
	entries, err := Listing(shows, testIndex())
	require.ErrorIs(t, err, ErrLookup)
	assert.Nil(t, entries)
}
