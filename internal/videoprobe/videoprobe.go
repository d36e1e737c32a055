// Package videoprobe extracts duration, frame rate, and resolution from
// video files via an external ffprobe binary, grounded on the ffprobe
// invocation shape used elsewhere in the retrieved pack's media-info
// tooling (exec.LookPath + "-show_format -show_streams -print_format
// json"). Probing is optional per spec §6/§4.4: when disabled or the
// binary is unavailable, callers must treat video fields as null.
package videoprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Prober runs ffprobe against individual files. A Prober with a missing
// binary still constructs successfully; Available() reports whether
// probing will actually work, so callers can fail fast when the
// configuration demands ffprobe but it is absent.
type Prober struct {
	binaryPath string
}

// NewProber resolves "ffprobe" on PATH. The returned Prober is usable
// even if resolution failed — Available() reports false in that case.
func NewProber() *Prober {
	path, err := exec.LookPath("ffprobe")
	if err != nil {
		return &Prober{}
	}
	return &Prober{binaryPath: path}
}

// Available reports whether a usable ffprobe binary was found.
func (p *Prober) Available() bool {
	return p.binaryPath != ""
}

// Data is the flattened subset of ffprobe's output the aggregator needs.
type Data struct {
	DurationSeconds float64
	HasDuration     bool
	FrameRate       float64
	HasFrameRate    bool
	Width           int
	Height          int
	HasDimensions   bool
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

type ffprobeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	Duration     string `json:"duration"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

// Probe runs ffprobe against path and parses its JSON output. It returns
// an error if the binary is unavailable or the process fails; the CPU
// pool then leaves the item's video fields null, without logging a
// warning or recording an error for the file.
func (p *Prober) Probe(ctx context.Context, path string) (Data, error) {
	var d Data
	if !p.Available() {
		return d, fmt.Errorf("videoprobe: ffprobe not found in PATH")
	}

	cmd := exec.CommandContext(ctx, p.binaryPath,
		"-v", "error",
		"-show_format", "-show_streams",
		"-print_format", "json",
		path,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return d, fmt.Errorf("videoprobe: ffprobe failed for %s: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}

	var out ffprobeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return d, fmt.Errorf("videoprobe: parse ffprobe output for %s: %w", path, err)
	}

	if sec, ok := parseSeconds(out.Format.Duration); ok {
		d.DurationSeconds, d.HasDuration = sec, true
	}

	for _, s := range out.Streams {
		if s.CodecType != "video" {
			continue
		}
		if s.Width > 0 && s.Height > 0 {
			d.Width, d.Height, d.HasDimensions = s.Width, s.Height, true
		}
		if rate, ok := parseFrameRate(s.AvgFrameRate); ok {
			d.FrameRate, d.HasFrameRate = rate, true
		} else if rate, ok := parseFrameRate(s.RFrameRate); ok {
			d.FrameRate, d.HasFrameRate = rate, true
		}
		if !d.HasDuration {
			if sec, ok := parseSeconds(s.Duration); ok {
				d.DurationSeconds, d.HasDuration = sec, true
			}
		}
		break
	}

	return d, nil
}

func parseSeconds(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseFrameRate handles ffprobe's "num/den" rational frame rate strings.
func parseFrameRate(s string) (float64, bool) {
	num, den, found := strings.Cut(s, "/")
	if !found {
		return parseSeconds(s)
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0, false
	}
	return n / d, true
}
