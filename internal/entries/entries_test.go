package entries

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/forPelevin/recap/internal/types"
)

const sample = `show,year,running_order,country,artist,title,snippet_start,snippet_end,alt_snippet_start,alt_snippet_end,video_link,display_name,show_title
final,2024,2,NOR,Beta,Two,0:30,0:45,,,https://youtu.be/b,,
final,2024,1,swe,Alpha,One,1:05,1:20.5,0:10,0:20,,,Grand Final
final,2024,10,FIN,Gamma,Three,12,22,,,,Suomi,
semi,2024,1,ENG,Delta,Four,0,5,,,,,
`

func TestParse_Sample(t *testing.T) {
	t.Parallel()

	es, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(es) != 4 {
		t.Fatalf("entries=%d", len(es))
	}

	swe := es[1]
	if swe.ShowID != "2024_final" || swe.RunningOrder != "01" || swe.Country != "SWE" {
		t.Fatalf("unexpected identity: %+v", swe)
	}
	if swe.Snippet != (types.Window{Start: 65 * time.Second, End: 80500 * time.Millisecond}) {
		t.Fatalf("snippet=%+v", swe.Snippet)
	}
	if swe.AltSnippet == nil || swe.AltSnippet.End != 20*time.Second {
		t.Fatalf("alt snippet=%+v", swe.AltSnippet)
	}
	if swe.Base() != "2024_final_01_SWE" {
		t.Fatalf("base=%s", swe.Base())
	}
	if es[0].VideoLink != "https://youtu.be/b" || es[2].DisplayName != "Suomi" {
		t.Fatalf("optional columns not read: %+v %+v", es[0], es[2])
	}
	for i, e := range es {
		if e.Index != i {
			t.Fatalf("entry %d index=%d", i, e.Index)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "empty input"},
		{"missing column", "show,country\nfinal,SWE\n", `missing column "running_order"`},
		{"no rows", "show,running_order,country,snippet_start,snippet_end\n", "no entries"},
		{"bad timestamp", "show,running_order,country,snippet_start,snippet_end\nf,1,SWE,abc,10\n", "line 2"},
		{"half alt", "show,running_order,country,snippet_start,snippet_end,alt_snippet_start\nf,1,SWE,0,10,5\n", "alt snippet"},
		{"duplicate", "show,running_order,country,snippet_start,snippet_end\nf,1,SWE,0,10\nf,01,SWE,0,10\n", "duplicate entry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err=%v want substring %q", err, tt.want)
			}
		})
	}
}

func TestParse_NoYearColumn(t *testing.T) {
	t.Parallel()

	es, err := Parse(strings.NewReader("Show,Running_Order,Country,Snippet_Start,Snippet_End\nfinal,b,SWE,0,10\n"))
	if err != nil {
		t.Fatal(err)
	}
	if es[0].ShowID != "final" || es[0].RunningOrder != "b" {
		t.Fatalf("entry=%+v", es[0])
	}
}

func TestGroup_OrdersByRunningOrder(t *testing.T) {
	t.Parallel()

	es, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	shows := Group(es)
	if len(shows) != 2 {
		t.Fatalf("shows=%d", len(shows))
	}
	final := shows[0]
	if final.ID != "2024_final" || final.Title != "Grand Final" {
		t.Fatalf("show=%s title=%q", final.ID, final.Title)
	}
	var got []string
	for _, e := range final.Entries {
		got = append(got, e.RunningOrder)
	}
	if strings.Join(got, ",") != "01,02,10" {
		t.Fatalf("running order=%v", got)
	}
	if shows[1].Title != "2024 Semi" {
		t.Fatalf("derived title=%q", shows[1].Title)
	}
}

func TestGroup_MixedRunningOrders(t *testing.T) {
	t.Parallel()

	es := []types.Entry{
		{ShowID: "s", RunningOrder: "wc", Index: 0},
		{ShowID: "s", RunningOrder: "03", Index: 1},
		{ShowID: "s", RunningOrder: "ab", Index: 2},
		{ShowID: "s", RunningOrder: "01", Index: 3},
	}
	var got []string
	for _, e := range Group(es)[0].Entries {
		got = append(got, e.RunningOrder)
	}
	if strings.Join(got, ",") != "01,03,ab,wc" {
		t.Fatalf("order=%v", got)
	}
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "entries.csv")
	if err := os.WriteFile(p, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	es, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(es) != 4 {
		t.Fatalf("entries=%d", len(es))
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
