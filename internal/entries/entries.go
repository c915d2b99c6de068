// Package entries reads the contestant table and groups it into shows.
package entries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/forPelevin/recap/internal/domain/countries"
	"github.com/forPelevin/recap/internal/domain/snippet"
	"github.com/forPelevin/recap/internal/types"
)

var requiredColumns = []string{"show", "running_order", "country", "snippet_start", "snippet_end"}

// Show is one show's entries in running order.
type Show struct {
	ID      string
	Title   string
	Entries []types.Entry
}

func Load(path string) ([]types.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	es, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return es, nil
}

func Parse(r io.Reader) ([]types.Entry, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty input")
	}
	if err != nil {
		return nil, err
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		cols[h] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	var out []types.Entry
	seen := make(map[string]int)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if isBlank(rec) {
			continue
		}

		e, err := parseRow(get)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		e.Index = len(out)
		if prev, ok := seen[e.Base()]; ok {
			return nil, fmt.Errorf("line %d: duplicate entry %s (first at row %d)", line, e.Label(), prev+1)
		}
		seen[e.Base()] = e.Index
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no entries")
	}
	return out, nil
}

func parseRow(get func(string) string) (types.Entry, error) {
	show := get("show")
	if show == "" {
		return types.Entry{}, fmt.Errorf("show is empty")
	}
	if y := get("year"); y != "" {
		show = y + "_" + show
	}
	ro := RunningOrder(get("running_order"))
	if ro == "" {
		return types.Entry{}, fmt.Errorf("running_order is empty")
	}
	country := strings.ToUpper(get("country"))
	if country == "" {
		return types.Entry{}, fmt.Errorf("country is empty")
	}

	w, err := window(get("snippet_start"), get("snippet_end"))
	if err != nil {
		return types.Entry{}, fmt.Errorf("snippet: %w", err)
	}
	e := types.Entry{
		ShowID:       show,
		ShowTitle:    get("show_title"),
		RunningOrder: ro,
		Country:      country,
		DisplayName:  get("display_name"),
		Artist:       get("artist"),
		Title:        get("title"),
		Snippet:      w,
		VideoLink:    get("video_link"),
	}

	as, ae := get("alt_snippet_start"), get("alt_snippet_end")
	switch {
	case as == "" && ae == "":
	case as == "" || ae == "":
		return types.Entry{}, fmt.Errorf("alt snippet needs both start and end")
	default:
		alt, err := window(as, ae)
		if err != nil {
			return types.Entry{}, fmt.Errorf("alt snippet: %w", err)
		}
		e.AltSnippet = &alt
	}
	return e, nil
}

func window(start, end string) (types.Window, error) {
	s, err := snippet.ParseTimestamp(start)
	if err != nil {
		return types.Window{}, err
	}
	e, err := snippet.ParseTimestamp(end)
	if err != nil {
		return types.Window{}, err
	}
	return types.Window{Start: s, End: e}, nil
}

// RunningOrder zero-pads numeric running orders to two digits and keeps
// anything else as written.
func RunningOrder(s string) string {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return fmt.Sprintf("%02d", n)
	}
	return s
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Group splits entries into shows, in order of each show's first row, with
// entries sorted by running order.
func Group(es []types.Entry) []Show {
	var shows []Show
	idx := make(map[string]int)
	for _, e := range es {
		i, ok := idx[e.ShowID]
		if !ok {
			i = len(shows)
			idx[e.ShowID] = i
			shows = append(shows, Show{ID: e.ShowID})
		}
		if shows[i].Title == "" && e.ShowTitle != "" {
			shows[i].Title = e.ShowTitle
		}
		shows[i].Entries = append(shows[i].Entries, e)
	}
	for i := range shows {
		if shows[i].Title == "" {
			shows[i].Title = countries.ShowTitle(shows[i].ID)
		}
		sort.SliceStable(shows[i].Entries, func(a, b int) bool {
			return less(shows[i].Entries[a], shows[i].Entries[b])
		})
	}
	return shows
}

func less(a, b types.Entry) bool {
	na, errA := strconv.Atoi(a.RunningOrder)
	nb, errB := strconv.Atoi(b.RunningOrder)
	switch {
	case errA == nil && errB == nil:
		if na != nb {
			return na < nb
		}
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		if a.RunningOrder != b.RunningOrder {
			return a.RunningOrder < b.RunningOrder
		}
	}
	return a.Index < b.Index
}
