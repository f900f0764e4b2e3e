package scraper

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

type memSink struct {
	boards  map[string]string // board -> source
	inserts int
}

func (s *memSink) InsertBoard(board, source string) (bool, error) {
	s.inserts++
	if _, ok := s.boards[board]; ok {
		return false, nil
	}
	s.boards[board] = source
	return true, nil
}

const page = `<html><body>
<table>
  <tr><td data-board="18 9 6 0|0 9 3 0|33 18 18 3|0 0 15 0">daily</td></tr>
  <tr><td data-board="not a board">junk</td></tr>
  <tr><td data-board="256 0 0 0|0 0 0 0|0 0 0 0|0 0 0 0">out of range</td></tr>
</table>
<code class="board">5 5 0 0|0 0 0 0|0 0 0 0|0 0 0 0</code>
<code class="board">  1 2 3 4|5 6 7 8|9 10 11 12|13 14 15 0 </code>
<code>5 5 0 0|0 0 0 0|0 0 0 0|0 0 0 1</code>
</body></html>`

func TestDiscover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.PageURLs = []string{srv.URL}
	w := NewWorker(cfg, nil, nil)

	sink := &memSink{boards: map[string]string{}}
	n, err := w.Discover(sink)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if n != 3 {
		t.Fatalf("new boards=%d want 3 (got %v)", n, sink.boards)
	}
	for _, want := range []string{
		"18 9 6 0|0 9 3 0|33 18 18 3|0 0 15 0",
		"5 5 0 0|0 0 0 0|0 0 0 0|0 0 0 0",
		"1 2 3 4|5 6 7 8|9 10 11 12|13 14 15 0",
	} {
		if _, ok := sink.boards[want]; !ok {
			t.Errorf("board %q not discovered", want)
		}
	}
}

func TestDiscover_Dedupes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.PageURLs = []string{srv.URL}
	w := NewWorker(cfg, nil, nil)
	sink := &memSink{boards: map[string]string{}}

	if _, err := w.Discover(sink); err != nil {
		t.Fatalf("Discover: %v", err)
	}
	firstInserts := sink.inserts

	n, err := w.Discover(sink)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if n != 0 {
		t.Fatalf("second crawl found %d new boards, want 0", n)
	}
	if sink.inserts != firstInserts {
		t.Fatal("known boards should not hit the sink again")
	}
}

func TestNormalizeBoard(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"5 5 0 0|0 0 0 0|0 0 0 0|0 0 0 0", "5 5 0 0|0 0 0 0|0 0 0 0|0 0 0 0", true},
		{"  5 5 0 0|0 0 0 0|0 0 0 0|0 0 0 0\n", "5 5 0 0|0 0 0 0|0 0 0 0|0 0 0 0", true},
		{"256 0 0 0|0 0 0 0|0 0 0 0|0 0 0 0", "", false},
		{"5 5 0|0 0 0|0 0 0|0 0 0", "", false},
		{"", "", false},
		{"solve me", "", false},
	}
	for _, tc := range cases {
		got, ok := normalizeBoard(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("normalizeBoard(%q)=(%q,%v) want (%q,%v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
