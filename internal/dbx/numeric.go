package dbx

import "strconv"

// Numeric renders an amount for a NUMERIC(20,0) parameter. database/sql
// refuses uint64 values with the high bit set, so amounts travel as text.
func Numeric(v uint64) string {
	return strconv.FormatUint(v, 10)
}
