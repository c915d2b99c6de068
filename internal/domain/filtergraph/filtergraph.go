// Package filtergraph builds the ffmpeg filter_complex used to turn one source
// video and one title card into a normalized recap clip.
package filtergraph

import (
	"strconv"
	"strings"
	"time"
)

// Final output labels selected with -map.
const (
	VideoOut = "v"
	AudioOut = "a"
)

// Loudness holds EBU R128 loudnorm targets.
type Loudness struct {
	IntegratedLUFS float64
	TruePeakDB     float64
	LRA            float64
}

// DefaultLoudness targets streaming-platform loudness.
var DefaultLoudness = Loudness{IntegratedLUFS: -14, TruePeakDB: -1.5, LRA: 11}

type Params struct {
	Width    int
	Height   int
	FPS      int
	Duration time.Duration
	Fade     time.Duration
	// OverlayScale pre-scales the card; 0 and 1 leave it at native size.
	OverlayScale float64
	Loudness     Loudness
}

// Stage is one filter chain: labelled inputs, comma-joined filters and one
// labelled output.
type Stage struct {
	Inputs  []string
	Filters []string
	Output  string
}

func (s Stage) String() string {
	var b strings.Builder
	for _, in := range s.Inputs {
		b.WriteString("[" + in + "]")
	}
	b.WriteString(strings.Join(s.Filters, ","))
	b.WriteString("[" + s.Output + "]")
	return b.String()
}

type Graph struct {
	Video []Stage
	Audio []Stage
}

func (g Graph) String() string {
	parts := make([]string, 0, len(g.Video)+len(g.Audio))
	for _, s := range g.Video {
		parts = append(parts, s.String())
	}
	for _, s := range g.Audio {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, ";")
}

// EffectiveFade caps the fade at half the clip so fade-out never starts
// before zero or before the fade-in has finished.
func EffectiveFade(duration, fade time.Duration) time.Duration {
	if duration <= 0 || fade <= 0 {
		return 0
	}
	if half := duration / 2; fade > half {
		return half
	}
	return fade
}

// BuildClip returns the per-entry graph. Input 0 is the source video with
// audio, input 1 the overlay card.
func BuildClip(p Params) Graph {
	if p.Loudness == (Loudness{}) {
		p.Loudness = DefaultLoudness
	}
	fade := EffectiveFade(p.Duration, p.Fade)
	fadeOutAt := p.Duration - fade
	if fadeOutAt < 0 {
		fadeOutAt = 0
	}
	ratio := fmtFloat(float64(p.Width)/float64(p.Height), 6)
	w := strconv.Itoa(p.Width)
	h := strconv.Itoa(p.Height)

	var g Graph
	g.Video = append(g.Video,
		Stage{
			Inputs:  []string{"0:v"},
			Filters: []string{"scale=w='ceil(iw*sar/2)*2':h='ceil(ih/2)*2':flags=lanczos", "setsar=1"},
			Output:  "sq",
		},
		Stage{
			Inputs: []string{"sq"},
			Filters: []string{
				"scale=w='if(gt(a," + ratio + ")," + w + ",-2)':h='if(gt(a," + ratio + "),-2," + h + ")':flags=lanczos",
				"pad=" + w + ":" + h + ":(ow-iw)/2:(oh-ih)/2",
			},
			Output: "fit",
		},
	)

	overlay := "1:v"
	if p.OverlayScale > 0 && p.OverlayScale != 1 {
		s := fmtFloat(p.OverlayScale, 4)
		g.Video = append(g.Video, Stage{
			Inputs:  []string{"1:v"},
			Filters: []string{"scale=iw*" + s + ":ih*" + s},
			Output:  "ol",
		})
		overlay = "ol"
	}

	g.Video = append(g.Video,
		Stage{Inputs: []string{"fit", overlay}, Filters: []string{"overlay=(W-w)/2:(H-h)/2:format=auto"}, Output: "ovl"},
		Stage{Inputs: []string{"ovl"}, Filters: []string{"fade=t=in:st=0:d=" + seconds(fade)}, Output: "fi"},
		Stage{Inputs: []string{"fi"}, Filters: []string{"fade=t=out:st=" + seconds(fadeOutAt) + ":d=" + seconds(fade)}, Output: "fo"},
		Stage{Inputs: []string{"fo"}, Filters: []string{"fps=fps=" + strconv.Itoa(p.FPS), "format=yuv420p"}, Output: VideoOut},
	)

	l := p.Loudness
	g.Audio = append(g.Audio, Stage{
		Inputs: []string{"0:a"},
		Filters: []string{
			"loudnorm=I=" + fmtFloat(l.IntegratedLUFS, 2) + ":TP=" + fmtFloat(l.TruePeakDB, 2) + ":LRA=" + fmtFloat(l.LRA, 2),
			"afade=t=in:st=0:d=" + seconds(fade),
			"afade=t=out:st=" + seconds(fadeOutAt) + ":d=" + seconds(fade),
		},
		Output: AudioOut,
	})
	return g
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

// fmtFloat trims trailing zeros so -14 renders as "-14" and 0.925 as "0.925".
func fmtFloat(f float64, prec int) string {
	s := strconv.FormatFloat(f, 'f', prec, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}
