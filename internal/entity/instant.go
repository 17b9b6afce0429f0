package entity

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// UTCTime is a time.Time that is normalized to UTC at every boundary it
// crosses: JSON decode, JSON encode, and database scan. Offsets supplied by
// clients are honored and then collapsed, so a value compared anywhere
// downstream is always an absolute instant.
type UTCTime struct {
	time.Time
}

func NewUTCTime(t time.Time) UTCTime {
	return UTCTime{Time: t.UTC()}
}

func (t *UTCTime) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid time literal %s", s)
	}
	parsed, err := time.Parse(time.RFC3339, s[1:len(s)-1])
	if err != nil {
		return err
	}
	t.Time = parsed.UTC()
	return nil
}

func (t UTCTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(time.RFC3339) + `"`), nil
}

func (t UTCTime) Value() (driver.Value, error) {
	return t.UTC(), nil
}

func (t *UTCTime) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case time.Time:
		t.Time = v.UTC()
	case []byte:
		parsed, err := time.Parse("2006-01-02 15:04:05", string(v))
		if err != nil {
			return err
		}
		t.Time = parsed.UTC()
	default:
		return fmt.Errorf("cannot scan type %T into UTCTime", value)
	}
	return nil
}
