package dataset

import (
	"fmt"
	"time"
)

// Kind identifies the type a Value carries.
type Kind int

const (
	// KindMissing marks an absent or unusable cell value.
	KindMissing Kind = iota
	// KindNumber is a floating point numeric value.
	KindNumber
	// KindText is a free-form string value.
	KindText
	// KindDate is a calendar date or timestamp.
	KindDate
)

// Value is a single typed cell of a Record. The zero Value is missing.
// Values are immutable after construction.
type Value struct {
	kind Kind
	num  float64
	text string
	date time.Time
}

// Missing returns the explicit missing-value marker.
func Missing() Value {
	return Value{kind: KindMissing}
}

// Number returns a numeric Value.
func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// Text returns a string Value.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Date returns a date Value.
func Date(t time.Time) Value {
	return Value{kind: KindDate, date: t}
}

// Kind returns the value's type tag.
func (v Value) Kind() Kind {
	return v.kind
}

// IsMissing reports whether the value is the missing marker.
func (v Value) IsMissing() bool {
	return v.kind == KindMissing
}

// Number returns the numeric payload. The second result is false when the
// value is not numeric.
func (v Value) Number() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Text returns the string payload. The second result is false when the
// value is not text.
func (v Value) Text() (string, bool) {
	return v.text, v.kind == KindText
}

// Date returns the date payload. The second result is false when the
// value is not a date.
func (v Value) Date() (time.Time, bool) {
	return v.date, v.kind == KindDate
}

// String renders the value for display and logging.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return fmt.Sprintf("%g", v.num)
	case KindText:
		return v.text
	case KindDate:
		return v.date.Format("2006-01-02")
	default:
		return "<missing>"
	}
}
