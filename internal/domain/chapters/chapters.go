// Package chapters computes chapter marks for a concatenated recap and renders
// them as an ffmpeg metadata document.
package chapters

import (
	"strconv"
	"strings"
	"time"

	"github.com/forPelevin/recap/internal/types"
)

// LeadIn is the offset of the first chapter.
const LeadIn = time.Second

// Namer resolves a country code to a display name.
type Namer interface {
	Name(code string) string
}

type Chapter struct {
	Start time.Duration
	End   time.Duration
	Title string
}

type Document struct {
	Chapters []Chapter
}

// Build lays out one chapter per entry in play order. Each chapter covers the
// entry's requested window floored to whole seconds plus one fade; the running
// offset then advances by the floored duration plus both fades.
func Build(entries []types.Entry, v types.Variant, fade time.Duration, names Namer) Document {
	if fade < 0 {
		fade = 0
	}
	doc := Document{Chapters: make([]Chapter, 0, len(entries))}
	run := LeadIn
	for _, e := range entries {
		d := e.Window(v).Duration().Truncate(time.Second)
		if d < 0 {
			d = 0
		}
		doc.Chapters = append(doc.Chapters, Chapter{
			Start: run,
			End:   run + d + fade,
			Title: Title(e, names),
		})
		run += d + 2*fade
	}
	return doc
}

// Title renders "<country>: <artist> - <title>". An entry's DisplayName wins
// over the namer.
func Title(e types.Entry, names Namer) string {
	country := strings.TrimSpace(e.DisplayName)
	if country == "" && names != nil {
		country = names.Name(e.Country)
	}
	if country == "" {
		country = e.Country
	}
	return country + ": " + e.Artist + " - " + e.Title
}

func (d Document) Titles() []string {
	out := make([]string, 0, len(d.Chapters))
	for _, c := range d.Chapters {
		out = append(out, c.Title)
	}
	return out
}

func (d Document) Render() string {
	var b strings.Builder
	b.WriteString(";FFMETADATA1\n")
	for _, c := range d.Chapters {
		b.WriteString("\n[CHAPTER]\nTIMEBASE=1/1000\n")
		b.WriteString("START=" + strconv.FormatInt(c.Start.Milliseconds(), 10) + "\n")
		b.WriteString("END=" + strconv.FormatInt(c.End.Milliseconds(), 10) + "\n")
		b.WriteString("title=" + escape(c.Title) + "\n")
	}
	return b.String()
}

var metaEscaper = strings.NewReplacer(
	`\`, `\\`,
	"=", `\=`,
	";", `\;`,
	"#", `\#`,
	"\n", "\\\n",
)

func escape(s string) string {
	return metaEscaper.Replace(strings.ReplaceAll(s, "\r", ""))
}
