package encoder

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestBuildTranscodeArgs(t *testing.T) {
	args := buildTranscodeArgs("/tmp/in.mp4", "/tmp/out.mp4", 854, 480)

	want := []string{
		"-i", "/tmp/in.mp4",
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		"-vf", "scale=854:480",
		"-c:a", "aac",
		"-ac", "2",
		"-ar", "44100",
		"-movflags", "+faststart",
		"-y",
		"/tmp/out.mp4",
	}

	if len(args) != len(want) {
		t.Fatalf("buildTranscodeArgs() returned %d args, want %d: %v", len(args), len(want), args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("buildTranscodeArgs()[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestBuildTranscodeArgs_Scale(t *testing.T) {
	tests := []struct {
		width, height int
		want          string
	}{
		{256, 144, "scale=256:144"},
		{426, 240, "scale=426:240"},
		{640, 360, "scale=640:360"},
		{1280, 720, "scale=1280:720"},
		{1920, 1080, "scale=1920:1080"},
	}

	for _, tt := range tests {
		args := buildTranscodeArgs("in", "out", tt.width, tt.height)
		found := false
		for _, a := range args {
			if a == tt.want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("buildTranscodeArgs(%d, %d) missing %q in %v", tt.width, tt.height, tt.want, args)
		}
	}
}

func TestBuildFrameArgs(t *testing.T) {
	args := buildFrameArgs("/tmp/in.mp4", "/tmp/frame.jpg", time.Second)

	joined := strings.Join(args, " ")
	if !strings.HasPrefix(joined, "-ss 1.00 -i /tmp/in.mp4") {
		t.Errorf("buildFrameArgs() = %q, want seek before input", joined)
	}
	for _, flag := range []string{"-vframes 1", "-q:v 2", "-y"} {
		if !strings.Contains(joined, flag) {
			t.Errorf("buildFrameArgs() missing %q in %q", flag, joined)
		}
	}
	if args[len(args)-1] != "/tmp/frame.jpg" {
		t.Errorf("buildFrameArgs() last arg = %q, want destination path", args[len(args)-1])
	}
}

func TestBuildFrameArgs_SubSecondOffset(t *testing.T) {
	args := buildFrameArgs("in", "out", 1500*time.Millisecond)
	if args[1] != "1.50" {
		t.Errorf("buildFrameArgs() seek = %q, want %q", args[1], "1.50")
	}
}

func TestParseProbeOutput(t *testing.T) {
	raw := []byte(`{
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "r_frame_rate": "30000/1001"},
			{"codec_type": "audio", "codec_name": "aac"}
		],
		"format": {"duration": "12.480000", "size": "1048576", "bit_rate": "672000", "format_name": "mov,mp4,m4a,3gp,3g2,mj2"}
	}`)

	meta, err := parseProbeOutput(raw)
	if err != nil {
		t.Fatalf("parseProbeOutput() error = %v", err)
	}

	if meta.Duration != 12.48 {
		t.Errorf("Duration = %v, want 12.48", meta.Duration)
	}
	if meta.Width != 1920 || meta.Height != 1080 {
		t.Errorf("frame size = %dx%d, want 1920x1080", meta.Width, meta.Height)
	}
	if meta.VideoCodec != "h264" {
		t.Errorf("VideoCodec = %q, want h264", meta.VideoCodec)
	}
	if !meta.HasAudio || meta.AudioCodec != "aac" {
		t.Errorf("audio = %v/%q, want aac stream detected", meta.HasAudio, meta.AudioCodec)
	}
	if got := meta.FrameRate; got < 29.96 || got > 29.98 {
		t.Errorf("FrameRate = %v, want ~29.97", got)
	}
	if meta.Container != "mov" {
		t.Errorf("Container = %q, want first name of the comma list", meta.Container)
	}
	if meta.FileSize != 1048576 || meta.Bitrate != 672000 {
		t.Errorf("size/bitrate = %d/%d, want 1048576/672000", meta.FileSize, meta.Bitrate)
	}
}

func TestParseProbeOutput_Garbage(t *testing.T) {
	if _, err := parseProbeOutput([]byte("not json at all")); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("parseProbeOutput() error = %v, want ErrInvalidInput", err)
	}
}

func TestNewFFmpeg_MissingBinaries(t *testing.T) {
	if _, err := NewFFmpeg("definitely-not-ffmpeg-xyz", ""); !errors.Is(err, ErrFFmpegNotFound) {
		t.Errorf("NewFFmpeg() error = %v, want ErrFFmpegNotFound", err)
	}
}
