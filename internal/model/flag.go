package model

// flag.go owns the canonicalization of the technician-confirmation flag.
// The column has been stored as BOOLEAN, TINYINT and VARCHAR across
// schema revisions, so drivers hand back true, "true", 1 or "1" for the
// same logical value.  Every boundary crossing (row scan, request parse,
// write echo) goes through CanonicalBool so API consumers only ever see
// a strict boolean.

import "database/sql/driver"

// CanonicalBool reduces a heterogeneous boolean-like value to a strict
// boolean.  A value is confirmed iff it equals one of true, "true", 1 or
// "1"; everything else (false, "false", 0, nil, "yes", ...) is not.
func CanonicalBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "1"
	case []byte:
		s := string(t)
		return s == "true" || s == "1"
	case int:
		return t == 1
	case int64:
		return t == 1
	case float64:
		return t == 1
	}
	return false
}

// ConfirmedFlag is the tagged raw-persisted-value type for the
// confirmation column.  Scanning applies CanonicalBool, so a row read
// from any schema revision yields a plain bool; writing always stores a
// native boolean.
type ConfirmedFlag bool

// Scan implements sql.Scanner.
func (f *ConfirmedFlag) Scan(src any) error {
	*f = ConfirmedFlag(CanonicalBool(src))
	return nil
}

// Value implements driver.Valuer.
func (f ConfirmedFlag) Value() (driver.Value, error) {
	return bool(f), nil
}

// Bool returns the canonical boolean.
func (f ConfirmedFlag) Bool() bool { return bool(f) }
