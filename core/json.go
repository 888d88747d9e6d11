package core

import (
	"bytes"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Form clients submit numeric fields as either native numbers or numeric
// strings. FlexInt and FlexFloat accept both and normalize to numeric.

type FlexInt int

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	b = unquote(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	v, err := strconv.Atoi(string(b))
	if err != nil {
		// tolerate "12.0" style form input
		f, ferr := strconv.ParseFloat(string(b), 64)
		if ferr != nil {
			return errors.Wrap(err, "parsing integer")
		}
		v = int(f)
	}
	*n = FlexInt(v)
	return nil
}

type FlexFloat float64

func (n *FlexFloat) UnmarshalJSON(b []byte) error {
	b = unquote(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return errors.Wrap(err, "parsing number")
	}
	*n = FlexFloat(v)
	return nil
}

// FlexTime accepts RFC3339 timestamps or bare "YYYY-MM-DD" dates.
type FlexTime struct {
	time.Time
}

func (t *FlexTime) UnmarshalJSON(b []byte) error {
	b = unquote(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := string(b)
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		if parsed, err = time.Parse("2006-01-02", s); err != nil {
			return errors.Wrap(err, "parsing date")
		}
	}
	t.Time = parsed
	return nil
}

func (t FlexTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(t.Format(time.RFC3339))), nil
}

// FlexTime persists as a plain BSON datetime, not an embedded struct.

func (t FlexTime) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(t.Time)
}

func (t *FlexTime) UnmarshalBSONValue(bt bsontype.Type, data []byte) error {
	return bson.UnmarshalValue(bt, data, &t.Time)
}

func unquote(b []byte) []byte {
	if len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"' {
		return b[1 : len(b)-1]
	}
	return b
}
