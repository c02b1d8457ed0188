package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// UndefinedText is how a missing value or undefined metric is rendered in text exports.
const UndefinedText = "undefined"

// MNullFloat is a float that may be missing (input data) or undefined (derived metric).
// NaN and infinities never escape as valid values.
type MNullFloat struct {
	Float64 float64
	Valid   bool
}

// -----------------------------------------------------------------------------

func Float(v float64) MNullFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return MNullFloat{}
	}
	return MNullFloat{Float64: v, Valid: true}
}

func Undefined() MNullFloat {
	return MNullFloat{}
}

// -----------------------------------------------------------------------------

func (n MNullFloat) String() string {
	if !n.Valid {
		return UndefinedText
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 64)
}

// Format renders with a fixed number of decimals.
func (n MNullFloat) Format(prec int) string {
	if !n.Valid {
		return UndefinedText
	}
	return strconv.FormatFloat(n.Float64, 'f', prec, 64)
}

func (n MNullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

func (n *MNullFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`"`+UndefinedText+`"`)) {
		*n = MNullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Float(v)
	return nil
}
