package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds a single probe invocation
const DefaultTimeout = 10 * time.Second

// DefaultCommand is the probe executable looked up on PATH
const DefaultCommand = "ffprobe"

var (
	// ErrNoVideoStream is returned when the probe output lists no stream
	ErrNoVideoStream = errors.New("no video stream in probe output")
	// ErrNoDuration is returned when the first stream carries no usable duration
	ErrNoDuration = errors.New("no duration in probe output")
	// ErrTimeout is returned when the probe did not finish in time
	ErrTimeout = errors.New("probe timed out")
)

// Info is the video metadata extracted by a probe
type Info struct {
	Duration  float64 // seconds
	FrameRate float64 // frames per second, 0 when unknown
}

// Prober extracts video metadata from a file.
// Implementations must return an error rather than panic on bad input.
type Prober interface {
	Probe(ctx context.Context, path string) (Info, error)
}

// ProberFunc adapts a function to the Prober interface
type ProberFunc func(ctx context.Context, path string) (Info, error)

// Probe calls f(ctx, path)
func (f ProberFunc) Probe(ctx context.Context, path string) (Info, error) {
	return f(ctx, path)
}

// runFunc executes a command and returns its stdout
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// FFProbe runs ffprobe as a subprocess for every file
type FFProbe struct {
	command string
	timeout time.Duration
	run     runFunc
}

// NewFFProbe creates an FFProbe. Empty command and non-positive timeout
// fall back to DefaultCommand and DefaultTimeout.
func NewFFProbe(command string, timeout time.Duration) *FFProbe {
	if command == "" {
		command = DefaultCommand
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &FFProbe{
		command: command,
		timeout: timeout,
		run:     runCommand,
	}
}

// Timeout returns the per-invocation timeout
func (p *FFProbe) Timeout() time.Duration {
	return p.timeout
}

// Probe reads duration and frame rate of the first video stream of path
func (p *FFProbe) Probe(ctx context.Context, path string) (Info, error) {
	if _, err := os.Stat(path); err != nil {
		return Info{}, fmt.Errorf("failed to stat video: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.run(ctx, p.command,
		"-v", "quiet",
		"-select_streams", "v:0",
		"-show_entries", "stream=duration,r_frame_rate",
		"-of", "json",
		path,
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Info{}, fmt.Errorf("%w after %v", ErrTimeout, p.timeout)
		}
		return Info{}, fmt.Errorf("%s failed: %w", p.command, err)
	}

	return ParseOutput(out)
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	// Don't wait forever on pipes held open by grandchildren after a kill.
	cmd.WaitDelay = time.Second
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}

type ffprobeOutput struct {
	Streams []struct {
		Duration   json.RawMessage `json:"duration"`
		RFrameRate string          `json:"r_frame_rate"`
	} `json:"streams"`
}

// ParseOutput decodes ffprobe's JSON output.
// Only the first stream is considered.
func ParseOutput(data []byte) (Info, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return Info{}, fmt.Errorf("failed to decode probe output: %w", err)
	}
	if len(out.Streams) == 0 {
		return Info{}, ErrNoVideoStream
	}

	stream := out.Streams[0]
	duration, err := parseDuration(stream.Duration)
	if err != nil {
		return Info{}, err
	}

	return Info{
		Duration:  duration,
		FrameRate: ParseFrameRate(stream.RFrameRate),
	}, nil
}

// ffprobe prints duration as a JSON string, but accept a bare number too.
func parseDuration(raw json.RawMessage) (float64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, ErrNoDuration
	}
	s = strings.Trim(s, `"`)
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNoDuration, s)
	}
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNoDuration, s)
	}
	return d, nil
}

// ParseFrameRate converts a "numerator/denominator" rate to frames per
// second. Anything unparseable, and a zero denominator, yields 0.
func ParseFrameRate(s string) float64 {
	num, den, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return 0
	}
	d, err := strconv.Atoi(strings.TrimSpace(den))
	if err != nil || d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
