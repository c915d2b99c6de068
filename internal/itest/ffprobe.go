//go:build integration

package itest

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

func probeDurationSeconds(mp4Path string) (float64, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		mp4Path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return sec, nil
}

type probedChapter struct {
	StartTime string            `json:"start_time"`
	EndTime   string            `json:"end_time"`
	Tags      map[string]string `json:"tags"`
}

func probeChapters(mp4Path string) ([]probedChapter, error) {
	cmd := exec.Command("ffprobe", "-v", "error", "-show_chapters", "-of", "json", mp4Path)
	b, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe chapters: %w", err)
	}
	var doc struct {
		Chapters []probedChapter `json:"chapters"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse chapters: %w", err)
	}
	return doc.Chapters, nil
}

type probedVideo struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RFrameRate string `json:"r_frame_rate"`
	PixFmt     string `json:"pix_fmt"`
	SAR        string `json:"sample_aspect_ratio"`
}

func probeVideo(mp4Path string) (probedVideo, error) {
	cmd := exec.Command("ffprobe", "-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate,pix_fmt,sample_aspect_ratio",
		"-of", "json", mp4Path,
	)
	b, err := cmd.Output()
	if err != nil {
		return probedVideo{}, fmt.Errorf("ffprobe stream: %w", err)
	}
	var doc struct {
		Streams []probedVideo `json:"streams"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return probedVideo{}, fmt.Errorf("parse streams: %w", err)
	}
	if len(doc.Streams) == 0 {
		return probedVideo{}, fmt.Errorf("%s: no video stream", mp4Path)
	}
	return doc.Streams[0], nil
}
