package domain

import (
	"encoding/json"
	"time"
)

// Instant is the single internal time representation for transaction dates.
// Source documents carry dates in three shapes: a server-assigned timestamp,
// a calendar date string, or a numeric epoch. All of them are coerced here,
// once, at ingestion; downstream code never branches on input shape.
type Instant struct {
	Time  time.Time
	Known bool
}

// NewInstant returns a known instant for t.
func NewInstant(t time.Time) Instant {
	return Instant{Time: t.UTC(), Known: true}
}

// UnknownInstant returns the marker used for dates that failed to coerce.
// Unknown instants are excluded from timestamp ordering but still surfaced.
func UnknownInstant() Instant {
	return Instant{}
}

// Date string layouts accepted from clients, tried in order.
var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
}

// ParseInstant coerces a raw date value into an Instant. It accepts a
// time.Time, a string in RFC3339 or calendar-date form, or a numeric epoch
// in seconds (integer or fractional, which is what JSON decoding yields).
// Anything else, including a malformed date string, yields an unknown
// instant rather than an error: a bad date must never break the feed sort.
func ParseInstant(v any) Instant {
	switch d := v.(type) {
	case nil:
		return UnknownInstant()
	case time.Time:
		return NewInstant(d)
	case string:
		for _, layout := range instantLayouts {
			if t, err := time.Parse(layout, d); err == nil {
				return NewInstant(t)
			}
		}
		return UnknownInstant()
	case int64:
		return NewInstant(time.Unix(d, 0))
	case float64:
		sec := int64(d)
		nsec := int64((d - float64(sec)) * float64(time.Second))
		return NewInstant(time.Unix(sec, nsec))
	case json.Number:
		if f, err := d.Float64(); err == nil {
			return ParseInstant(f)
		}
		return UnknownInstant()
	default:
		return UnknownInstant()
	}
}

// After reports whether i orders strictly before other in feed order,
// newest first. A known instant always orders before an unknown one;
// equal timestamps fall back to the id tie-break handled by the caller.
func (i Instant) After(other Instant) bool {
	switch {
	case i.Known && !other.Known:
		return true
	case !i.Known:
		return false
	default:
		return i.Time.After(other.Time)
	}
}

// Equal reports whether the two instants are the same point in time.
// Two unknown instants compare equal.
func (i Instant) Equal(other Instant) bool {
	if i.Known != other.Known {
		return false
	}
	if !i.Known {
		return true
	}
	return i.Time.Equal(other.Time)
}
