package dataset

import (
	"errors"
	"testing"
	"time"
)

func TestNewValidatesColumnSets(t *testing.T) {
	cols := []string{"a", "b"}

	good := []Record{
		{"a": Number(1), "b": Text("x")},
		{"a": Missing(), "b": Text("y")},
	}
	if _, err := New(cols, good); err != nil {
		t.Fatalf("unexpected error for valid records: %v", err)
	}

	missing := []Record{{"a": Number(1)}}
	_, err := New(cols, missing)
	var mismatch *ErrColumnMismatch
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected ErrColumnMismatch for missing column, got %v", err)
	}

	extra := []Record{{"a": Number(1), "b": Text("x"), "c": Number(2)}}
	if _, err := New(cols, extra); !errors.As(err, &mismatch) {
		t.Fatalf("expected ErrColumnMismatch for extra column, got %v", err)
	}
}

func TestValueAccessors(t *testing.T) {
	when := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		v       Value
		kind    Kind
		missing bool
	}{
		{Missing(), KindMissing, true},
		{Number(3.5), KindNumber, false},
		{Text("hola"), KindText, false},
		{Date(when), KindDate, false},
	}

	for _, tt := range tests {
		if tt.v.Kind() != tt.kind {
			t.Errorf("Kind() = %v, expected %v", tt.v.Kind(), tt.kind)
		}
		if tt.v.IsMissing() != tt.missing {
			t.Errorf("IsMissing() = %v, expected %v", tt.v.IsMissing(), tt.missing)
		}
	}

	if n, ok := Number(3.5).Number(); !ok || n != 3.5 {
		t.Errorf("Number payload = %v, %v", n, ok)
	}
	if _, ok := Text("x").Number(); ok {
		t.Error("text value should not expose a number")
	}
	if d, ok := Date(when).Date(); !ok || !d.Equal(when) {
		t.Errorf("Date payload = %v, %v", d, ok)
	}
}

func TestColumnAndValueReads(t *testing.T) {
	ds, err := New([]string{"n"}, []Record{
		{"n": Number(1)},
		{"n": Missing()},
	})
	if err != nil {
		t.Fatal(err)
	}

	col := ds.Column("n")
	if len(col) != 2 {
		t.Fatalf("expected 2 values, got %d", len(col))
	}
	if !col[1].IsMissing() {
		t.Error("expected second value to be missing")
	}
	if !ds.Value(5, "n").IsMissing() {
		t.Error("out-of-range read should be missing")
	}
	if !ds.Value(0, "nope").IsMissing() {
		t.Error("unknown column read should be missing")
	}
}

func TestMissingColumns(t *testing.T) {
	ds, err := New([]string{"X", "Y"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	missing := ds.MissingColumns([]string{"X", "Y", "estado_obr", "fecha_dilig"})
	if len(missing) != 2 || missing[0] != "estado_obr" || missing[1] != "fecha_dilig" {
		t.Errorf("MissingColumns = %v", missing)
	}
}
