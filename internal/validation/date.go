package validation

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var dateType = reflect.TypeOf(Date{})

// Date accepts either a calendar date or a full RFC 3339 timestamp and is
// stored in UTC.
type Date struct {
	time.Time
}

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Date{t.UTC()}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t.UTC()}, nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &json.UnmarshalTypeError{Value: "non-string", Type: dateType}
	}

	parsed, err := ParseDate(s)
	if err != nil {
		return &json.UnmarshalTypeError{Value: "string", Type: dateType}
	}

	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time.Format(time.RFC3339))
}

// Ptr returns the time of a possibly nil date.
func (d *Date) Ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}
