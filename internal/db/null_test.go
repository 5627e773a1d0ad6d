package db

import (
	"database/sql"
	"testing"
)

func TestNullValues(t *testing.T) {
	if got := NullStringValue(sql.NullString{String: "x", Valid: true}); got != "x" {
		t.Errorf("NullStringValue = %q", got)
	}
	if got := NullStringValue(sql.NullString{String: "x"}); got != "" {
		t.Errorf("NullStringValue invalid = %q", got)
	}
	if got := NullFloat64Value(sql.NullFloat64{Float64: 1.5, Valid: true}); got != 1.5 {
		t.Errorf("NullFloat64Value = %v", got)
	}
	if got := NullFloat64Value(sql.NullFloat64{Float64: 1.5}); got != 0 {
		t.Errorf("NullFloat64Value invalid = %v", got)
	}
	if got := NullInt64Value(sql.NullInt64{Int64: 7, Valid: true}); got != 7 {
		t.Errorf("NullInt64Value = %v", got)
	}
	if got := NullInt64Value(sql.NullInt64{Int64: 7}); got != 0 {
		t.Errorf("NullInt64Value invalid = %v", got)
	}
}
