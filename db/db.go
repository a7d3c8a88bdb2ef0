// Package db provides database helpers and models
package db

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/pkg/errors"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

var ErrNotFound = errors.New("not found")

func DefaultOptions() url.Values {
	return url.Values{
		// with this, the db sleeps for a little while when locked. can prevent
		// a SQLITE_BUSY. see https://www.sqlite.org/c3ref/busy_timeout.html
		"_busy_timeout": {"30000"},
		"_journal_mode": {"WAL"},
		// shows reference venues and artists, deleting a venue cascades
		"_foreign_keys": {"true"},
	}
}

func mockOptions() url.Values {
	return url.Values{
		"_foreign_keys": {"true"},
	}
}

type DB struct {
	*gorm.DB
}

// New opens dsn with driver. for sqlite the dsn is a path and the options are
// appended as query parameters, for postgres the dsn is passed through
func New(driver, dsn string, opts url.Values) (*DB, error) {
	switch driver {
	case DriverSQLite:
		if len(opts) > 0 {
			dsn = fmt.Sprintf("%s?%s", dsn, opts.Encode())
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unknown driver %q", driver)
	}
	db, err := gorm.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "with gorm")
	}
	db.SetLogger(gormLogger{})
	db.LogMode(slog.Default().Enabled(context.Background(), slog.LevelDebug))
	if driver == DriverSQLite {
		db.DB().SetMaxOpenConns(1)
	}
	return &DB{DB: db}, nil
}

func NewMock() (*DB, error) {
	return New(DriverSQLite, ":memory:", mockOptions())
}

type gormLogger struct{}

func (gormLogger) Print(v ...interface{}) {
	slog.Debug("gorm", "msg", strings.TrimSpace(fmt.Sprintln(v...)))
}

func (db *DB) GetSetting(key SettingKey) (string, error) {
	var setting Setting
	err := db.
		Where("key=?", key).
		First(&setting).
		Error
	if gorm.IsRecordNotFoundError(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "get setting %q", key)
	}
	return setting.Value, nil
}

func (db *DB) SetSetting(key SettingKey, value string) error {
	return db.
		Where(Setting{Key: key}).
		Assign(Setting{Value: value}).
		FirstOrCreate(&Setting{}).
		Error
}

// GetSecret is GetSetting for binary values. values are stored base64
// encoded since settings live in a text column. a missing setting is nil
func (db *DB) GetSecret(key SettingKey) ([]byte, error) {
	value, err := db.GetSetting(key)
	if err != nil || value == "" {
		return nil, err
	}
	secret, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, errors.Wrapf(err, "decode setting %q", key)
	}
	return secret, nil
}

func (db *DB) SetSecret(key SettingKey, secret []byte) error {
	return db.SetSetting(key, base64.StdEncoding.EncodeToString(secret))
}

// WithTx runs cb in a transaction. the transaction is committed if cb returns
// nil, and rolled back if it returns an error or panics
func (db *DB) WithTx(cb func(tx *gorm.DB) error) (err error) {
	tx := db.Begin()
	if err := tx.Error; err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()
	if err := cb(tx); err != nil {
		if rerr := tx.Rollback().Error; rerr != nil {
			slog.Error("rolling back", "err", rerr)
		}
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}
