// Package showtime parses the start times typed into the show form and
// renders them back for pages
package showtime

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

const LayoutText = "2006-01-02 15:04:05"

//nolint:gochecknoglobals
var layouts = []string{
	LayoutText,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006-01-02",
}

var (
	ErrEmpty      = errors.New("start time is empty")
	ErrUnparsable = errors.New("start time not understood")
)

type Parser struct {
	natural *when.Parser
}

func NewParser() *Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Parser{natural: w}
}

// Parse reads an exact timestamp in the location of now, or falls back to
// natural language relative to now ("next friday at 8pm")
func (p *Parser) Parse(now time.Time, in string) (time.Time, error) {
	in = strings.TrimSpace(in)
	if in == "" {
		return time.Time{}, ErrEmpty
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, in, now.Location()); err == nil {
			return t, nil
		}
	}
	res, err := p.natural.Parse(in, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", ErrUnparsable, in, err)
	}
	if res == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsable, in)
	}
	return res.Time, nil
}

// Text is the plain form shows are listed with
func Text(t time.Time) string {
	return t.Format(LayoutText)
}

// InputValue fills a datetime-local input
func InputValue(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02T15:04")
}

// Format renders t in one of the display formats. "full" reads like
// "Saturday May, 21 2019 at 9:30PM", anything else like "Sat 05, 21 2019 9:30PM"
func Format(t time.Time, format string) string {
	switch format {
	case "full":
		return t.Format("Monday January, 2 2006 at 3:04PM")
	default:
		return t.Format("Mon 01, 02 2006 3:04PM")
	}
}
