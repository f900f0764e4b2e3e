package game

import (
	"errors"
	"testing"
)

func TestParseBoard_RoundTrip(t *testing.T) {
	in := "18 9 6 0|0 9 3 0|33 18 18 3|0 0 15 0"
	b, err := ParseBoard(in)
	if err != nil {
		t.Fatalf("ParseBoard: %v", err)
	}
	if b.Pos != 0 {
		t.Fatalf("cursor should start at 0, got %d", b.Pos)
	}
	if got := b.String(); got != in {
		t.Fatalf("String()=%q want %q", got, in)
	}
	if b.Cells[0] != 18 || b.Cells[8] != 33 || b.Cells[14] != 15 {
		t.Fatalf("cells decoded wrong: %v", b.Cells)
	}
}

func TestParseBoard_Invalid(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"too few rows", "1 2 3 4|5 6 7 8"},
		{"too many rows", "0 0 0 0|0 0 0 0|0 0 0 0|0 0 0 0|0 0 0 0"},
		{"short row", "1 2 3|0 0 0 0|0 0 0 0|0 0 0 0"},
		{"long row", "1 2 3 4 5|0 0 0 0|0 0 0 0|0 0 0 0"},
		{"out of range", "256 0 0 0|0 0 0 0|0 0 0 0|0 0 0 0"},
		{"negative", "-1 0 0 0|0 0 0 0|0 0 0 0|0 0 0 0"},
		{"not a number", "a 0 0 0|0 0 0 0|0 0 0 0|0 0 0 0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseBoard(tc.in); !errors.Is(err, ErrInvalidBoard) {
				t.Fatalf("ParseBoard(%q) err=%v, want ErrInvalidBoard", tc.in, err)
			}
		})
	}
}

func TestBoard_CursorIsPartOfState(t *testing.T) {
	a, err := ParseBoard("1 2 3 4|5 6 7 8|0 0 0 0|0 0 0 0")
	if err != nil {
		t.Fatalf("ParseBoard: %v", err)
	}
	b := a
	if a != b {
		t.Fatal("copies should compare equal")
	}
	b.Pos = 5
	if a == b {
		t.Fatal("boards differing only in cursor must not compare equal")
	}
}

func TestPoint_Helpers(t *testing.T) {
	for idx := 0; idx < CellCount; idx++ {
		p := PointAt(idx)
		if !p.Inside() {
			t.Fatalf("PointAt(%d)=%v should be inside", idx, p)
		}
		if p.Index() != idx {
			t.Fatalf("PointAt(%d).Index()=%d", idx, p.Index())
		}
	}
	outside := []Point{{X: -1, Y: 0}, {X: 0, Y: -1}, {X: N, Y: 0}, {X: 0, Y: N}}
	for _, p := range outside {
		if p.Inside() {
			t.Fatalf("%v should be outside", p)
		}
	}
}
