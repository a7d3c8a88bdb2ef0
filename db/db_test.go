package db

import (
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

func newTestDB(t *testing.T) *DB {
	t.Helper()
	testDB, err := NewMock()
	if err != nil {
		t.Fatalf("error creating db: %v", err)
	}
	t.Cleanup(func() { testDB.Close() })
	if err := testDB.Migrate(); err != nil {
		t.Fatalf("error migrating db: %v", err)
	}
	return testDB
}

func randKey() string {
	letters := []rune("abcdef0123456789")
	b := make([]rune, 16)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

func TestGetSetting(t *testing.T) {
	t.Parallel()

	testDB := newTestDB(t)
	key := SettingKey(randKey())

	actual, err := testDB.GetSetting(key)
	require.NoError(t, err)
	require.Equal(t, "", actual)

	require.NoError(t, testDB.SetSetting(key, "hello"))
	actual, err = testDB.GetSetting(key)
	require.NoError(t, err)
	require.Equal(t, "hello", actual)

	require.NoError(t, testDB.SetSetting(key, "howdy"))
	actual, err = testDB.GetSetting(key)
	require.NoError(t, err)
	require.Equal(t, "howdy", actual)
}

func TestSecretRoundTrip(t *testing.T) {
	t.Parallel()

	testDB := newTestDB(t)
	key := SettingKey(randKey())

	actual, err := testDB.GetSecret(key)
	require.NoError(t, err)
	require.Nil(t, actual)

	secret := []byte{0x00, 0xff, 0xfe, 0xc3, 0x28, 0x80, 'k'}
	require.NoError(t, testDB.SetSecret(key, secret))

	stored, err := testDB.GetSetting(key)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(stored))
	assert.NotContains(t, stored, "\x00")

	actual, err = testDB.GetSecret(key)
	require.NoError(t, err)
	assert.Equal(t, secret, actual)

	require.NoError(t, testDB.SetSetting(key, "not base64!"))
	_, err = testDB.GetSecret(key)
	require.Error(t, err)
}

func TestMigrateNameUDecFillsMissing(t *testing.T) {
	t.Parallel()

	testDB := newTestDB(t)
	venue := &Venue{Name: "Café Tacvba", City: "San Francisco", State: "CA", Address: "1015 Folsom Street"}
	require.NoError(t, testDB.CreateVenue(venue))
	artist := &Artist{Name: "Björk", City: "Reykjavik", State: "NY"}
	require.NoError(t, testDB.CreateArtist(artist))

	require.NoError(t, testDB.Model(venue).UpdateColumn("name_u_dec", gorm.Expr("NULL")).Error)
	require.NoError(t, testDB.Model(artist).UpdateColumn("name_u_dec", gorm.Expr("NULL")).Error)

	venues, err := testDB.SearchVenues("cafe")
	require.NoError(t, err)
	require.Empty(t, venues)

	require.NoError(t, testDB.WithTx(migrateNameUDec))

	venues, err = testDB.SearchVenues("cafe")
	require.NoError(t, err)
	require.Len(t, venues, 1)
	assert.Equal(t, "Café Tacvba", venues[0].Name)

	artists, err := testDB.SearchArtists("bjork")
	require.NoError(t, err)
	require.Len(t, artists, 1)
	assert.Equal(t, "Bjork", artists[0].NameUDec)
}

func TestMigrateTwice(t *testing.T) {
	t.Parallel()

	testDB := newTestDB(t)
	require.NoError(t, testDB.Migrate())
}

func TestVenuesOrderedByArea(t *testing.T) {
	t.Parallel()

	testDB := newTestDB(t)
	for _, v := range []*Venue{
		{Name: "The Dueling Pianos Bar", City: "New York", State: "NY", Address: "335 Delancey Street"},
		{Name: "The Musical Hop", City: "San Francisco", State: "CA", Address: "1015 Folsom Street"},
		{Name: "Park Square Live Music & Coffee", City: "San Francisco", State: "CA", Address: "34 Whiskey Moore Ave"},
	} {
		require.NoError(t, testDB.CreateVenue(v))
	}

	venues, err := testDB.Venues()
	require.NoError(t, err)
	require.Len(t, venues, 3)
	assert.Equal(t, "The Musical Hop", venues[0].Name)
	assert.Equal(t, "Park Square Live Music & Coffee", venues[1].Name)
	assert.Equal(t, "NY", venues[2].State)
}

func TestCreateVenueRequiresName(t *testing.T) {
	t.Parallel()

	testDB := newTestDB(t)
	err := testDB.CreateVenue(&Venue{City: "New York", State: "NY", Address: "1 Street"})
	require.Error(t, err)

	stats, err := testDB.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.Venues)
}

func TestGenres(t *testing.T) {
	t.Parallel()

	testDB := newTestDB(t)
	venue := &Venue{Name: "The Musical Hop", City: "San Francisco", State: "CA", Address: "1015 Folsom Street"}
	venue.SetGenres([]string{"Jazz", "Reggae", "Swing"})
	require.NoError(t, testDB.CreateVenue(venue))

	got, err := testDB.GetVenue(venue.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jazz", "Reggae", "Swing"}, got.GenreList())

	got.SetGenres(nil)
	assert.Equal(t, []string{}, got.GenreList())
}

func TestSearch(t *testing.T) {
	t.Parallel()

	testDB := newTestDB(t)
	for _, a := range []*Artist{
		{Name: "Guns N Petals", City: "San Francisco", State: "CA"},
		{Name: "Matt Quevedo", City: "New York", State: "NY"},
		{Name: "The Wild Sax Band", City: "San Francisco", State: "CA"},
		{Name: "Björk", City: "Reykjavik", State: "NY"},
		{Name: "100% Pure", City: "Austin", State: "TX"},
	} {
		require.NoError(t, testDB.CreateArtist(a))
	}

	names := func(artists []*Artist) []string {
		var ret []string
		for _, a := range artists {
			ret = append(ret, a.Name)
		}
		return ret
	}

	cases := []struct {
		term string
		exp  []string
	}{
		{"A", []string{"Guns N Petals", "Matt Quevedo", "The Wild Sax Band"}},
		{"band", []string{"The Wild Sax Band"}},
		{"MATT", []string{"Matt Quevedo"}},
		{"bjork", []string{"Björk"}},
		{"Björk", []string{"Björk"}},
		{"%", []string{"100% Pure"}},
		{"_", nil},
		{"nope", nil},
	}
	for _, c := range cases {
		artists, err := testDB.SearchArtists(c.term)
		require.NoError(t, err)
		assert.Equal(t, c.exp, names(artists), "term %q", c.term)
	}

	all, err := testDB.SearchArtists("")
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestSearchVenues(t *testing.T) {
	t.Parallel()

	testDB := newTestDB(t)
	for _, v := range []*Venue{
		{Name: "The Musical Hop", City: "San Francisco", State: "CA", Address: "1015 Folsom Street"},
		{Name: "Park Square Live Music & Coffee", City: "San Francisco", State: "CA", Address: "34 Whiskey Moore Ave"},
		{Name: "The Dueling Pianos Bar", City: "New York", State: "NY", Address: "335 Delancey Street"},
	} {
		require.NoError(t, testDB.CreateVenue(v))
	}
	venues, err := testDB.SearchVenues("Music")
	require.NoError(t, err)
	require.Len(t, venues, 2)
	assert.Equal(t, "Park Square Live Music & Coffee", venues[0].Name)
	assert.Equal(t, "The Musical Hop", venues[1].Name)
}

func TestGetMissing(t *testing.T) {
	t.Parallel()

	testDB := newTestDB(t)
	_, err := testDB.GetVenue(42)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = testDB.GetArtist(42)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, testDB.UpdateVenue(42, &Venue{Name: "x"}), ErrNotFound)
	require.ErrorIs(t, testDB.UpdateArtist(42, &Artist{Name: "x"}), ErrNotFound)
	require.ErrorIs(t, testDB.DeleteVenue(42), ErrNotFound)
}

func TestUpdateArtist(t *testing.T) {
	t.Parallel()

	testDB := newTestDB(t)
	artist := &Artist{Name: "Matt Quevedo", City: "New York", State: "NY", Phone: "300-400-5000"}
	require.NoError(t, testDB.CreateArtist(artist))

	in := &Artist{Name: "Mátt Quevedo", City: "Brooklyn", State: "NY", SeekingVenue: true, SeekingDescription: "looking"}
	in.SetGenres([]string{"Jazz"})
	require.NoError(t, testDB.UpdateArtist(artist.ID, in))

	got, err := testDB.GetArtist(artist.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mátt Quevedo", got.Name)
	assert.Equal(t, "Matt Quevedo", got.NameUDec)
	assert.Equal(t, "Brooklyn", got.City)
	assert.Equal(t, "", got.Phone)
	assert.True(t, got.SeekingVenue)
	assert.Equal(t, []string{"Jazz"}, got.GenreList())
	assert.True(t, got.CreatedAt.Equal(artist.CreatedAt))
}

func TestShows(t *testing.T) {
	t.Parallel()

	testDB := newTestDB(t)
	venue := &Venue{Name: "The Musical Hop", City: "San Francisco", State: "CA", Address: "1015 Folsom Street"}
	require.NoError(t, testDB.CreateVenue(venue))
	artist := &Artist{Name: "Guns N Petals", City: "San Francisco", State: "CA", ImageLink: "gnp.jpg"}
	require.NoError(t, testDB.CreateArtist(artist))

	start := time.Date(2019, 5, 21, 21, 30, 0, 0, time.UTC)
	later := &Show{VenueID: venue.ID, ArtistID: artist.ID, StartTime: start.Add(48 * time.Hour)}
	earlier := &Show{VenueID: venue.ID, ArtistID: artist.ID, StartTime: start}
	require.NoError(t, testDB.CreateShow(later))
	require.NoError(t, testDB.CreateShow(earlier))

	shows, err := testDB.ShowsForVenue(venue.ID)
	require.NoError(t, err)
	require.Len(t, shows, 2)
	assert.True(t, shows[0].StartTime.Equal(start))
	assert.Equal(t, earlier.ID, shows[0].ID)

	shows, err = testDB.ShowsForArtist(artist.ID)
	require.NoError(t, err)
	assert.Len(t, shows, 2)

	shows, err = testDB.ShowsForVenues(nil)
	require.NoError(t, err)
	assert.Empty(t, shows)

	entities, err := testDB.ArtistEntities([]int{artist.ID})
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "Guns N Petals", entities[0].Name)
	assert.Equal(t, "gnp.jpg", entities[0].ImageLink)

	entities, err = testDB.VenueEntities(nil)
	require.NoError(t, err)
	assert.Len(t, entities, 1)
}

func TestCreateShowMissingReference(t *testing.T) {
	t.Parallel()

	testDB := newTestDB(t)
	venue := &Venue{Name: "The Musical Hop", City: "San Francisco", State: "CA", Address: "1015 Folsom Street"}
	require.NoError(t, testDB.CreateVenue(venue))

	err := testDB.CreateShow(&Show{VenueID: venue.ID, ArtistID: 9, StartTime: time.Now()})
	require.ErrorIs(t, err, ErrNotFound)

	stats, err := testDB.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.Shows)
}

func TestDeleteVenueDeletesShows(t *testing.T) {
	t.Parallel()

	testDB := newTestDB(t)
	venue := &Venue{Name: "The Musical Hop", City: "San Francisco", State: "CA", Address: "1015 Folsom Street"}
	require.NoError(t, testDB.CreateVenue(venue))
	artist := &Artist{Name: "Guns N Petals", City: "San Francisco", State: "CA"}
	require.NoError(t, testDB.CreateArtist(artist))
	require.NoError(t, testDB.CreateShow(&Show{VenueID: venue.ID, ArtistID: artist.ID, StartTime: time.Now()}))

	require.NoError(t, testDB.DeleteVenue(venue.ID))

	stats, err := testDB.Stats()
	require.NoError(t, err)
	assert.Equal(t, Stats{Venues: 0, Artists: 1, Shows: 0}, stats)
}

func TestRecent(t *testing.T) {
	t.Parallel()

	testDB := newTestDB(t)
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"first", "second", "third"} {
		require.NoError(t, testDB.CreateArtist(&Artist{
			Name: name, City: "Austin", State: "TX",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	artists, err := testDB.RecentArtists(2)
	require.NoError(t, err)
	require.Len(t, artists, 2)
	assert.Equal(t, "third", artists[0].Name)
	assert.Equal(t, "second", artists[1].Name)
}

func TestWithTxRollsBack(t *testing.T) {
	t.Parallel()

	testDB := newTestDB(t)
	errBoom := errors.New("boom")
	err := testDB.WithTx(func(tx *gorm.DB) error {
		if err := tx.Create(&Artist{Name: "Guns N Petals", City: "San Francisco", State: "CA"}).Error; err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	require.Panics(t, func() {
		_ = testDB.WithTx(func(tx *gorm.DB) error {
			tx.Create(&Artist{Name: "Matt Quevedo", City: "New York", State: "NY"})
			panic("boom")
		})
	})

	stats, err := testDB.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.Artists)
}
