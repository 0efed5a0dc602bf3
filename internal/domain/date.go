package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// DateLayout is the canonical wire form of a calendar date.
const DateLayout = "2006-01-02"

// dateLayouts are tried in order when normalizing a date given as a string.
var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

type dateKind uint8

const (
	dateClear dateKind = iota
	dateValue
	dateText
)

// Date is a calendar date supplied either as a time value or as a string.
// The zero Date clears the field.
type Date struct {
	kind  dateKind
	value time.Time
	text  string
}

// DateOf wraps a time value. Its own year, month and day are used.
func DateOf(t time.Time) Date {
	return Date{kind: dateValue, value: t}
}

// DateString wraps a date string. An empty string clears the field.
func DateString(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return ClearDate()
	}
	return Date{kind: dateText, text: s}
}

// ClearDate sends an explicit null.
func ClearDate() Date {
	return Date{kind: dateClear}
}

// Normalize returns the date as YYYY-MM-DD. ok is false when the field is
// being cleared. Strings that match no known layout are returned unchanged.
func (d Date) Normalize() (value string, ok bool) {
	switch d.kind {
	case dateValue:
		if d.value.IsZero() {
			return "", false
		}
		return d.value.Format(DateLayout), true
	case dateText:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, d.text); err == nil {
				return t.Format(DateLayout), true
			}
		}
		return d.text, true
	default:
		return "", false
	}
}

func (d Date) MarshalJSON() ([]byte, error) {
	v, ok := d.Normalize()
	if !ok {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = ClearDate()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = DateString(s)
	return nil
}
