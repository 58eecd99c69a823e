package encoder

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Fixed encoding parameters. Every rendition uses the same codec set so the
// output plays in any mainstream browser; only the frame size varies.
const (
	videoCodec  = "libx264"
	videoCRF    = "23"
	videoPreset = "fast"
	audioCodec  = "aac"
	audioChans  = "2"
	audioRate   = "44100"
)

// FFmpeg runs ffmpeg and ffprobe as subprocesses.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
}

var _ Encoder = (*FFmpeg)(nil)

// NewFFmpeg verifies both binaries are on PATH before returning.
func NewFFmpeg(ffmpegPath, ffprobePath string) (*FFmpeg, error) {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}

	if _, err := exec.LookPath(ffmpegPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFFmpegNotFound, err)
	}
	if _, err := exec.LookPath(ffprobePath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFFprobeNotFound, err)
	}

	return &FFmpeg{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}, nil
}

func (f *FFmpeg) Transcode(ctx context.Context, srcPath, dstPath string, width, height int) error {
	args := buildTranscodeArgs(srcPath, dstPath, width, height)

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: ffmpeg failed: %v, output: %s", ErrEncodeFailed, err, string(output))
	}
	return nil
}

func (f *FFmpeg) ExtractFrame(ctx context.Context, srcPath, dstPath string, at time.Duration) error {
	args := buildFrameArgs(srcPath, dstPath, at)

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: failed to extract frame: %v, output: %s", ErrEncodeFailed, err, string(output))
	}
	return nil
}

func buildTranscodeArgs(srcPath, dstPath string, width, height int) []string {
	return []string{
		"-i", srcPath,
		"-c:v", videoCodec,
		"-preset", videoPreset,
		"-crf", videoCRF,
		"-vf", fmt.Sprintf("scale=%d:%d", width, height),
		"-c:a", audioCodec,
		"-ac", audioChans,
		"-ar", audioRate,
		"-movflags", "+faststart",
		"-y",
		dstPath,
	}
}

func buildFrameArgs(srcPath, dstPath string, at time.Duration) []string {
	return []string{
		"-ss", fmt.Sprintf("%.2f", at.Seconds()),
		"-i", srcPath,
		"-vframes", "1",
		"-q:v", "2",
		"-y",
		dstPath,
	}
}

// ffprobeOutput represents the JSON output from ffprobe
type ffprobeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
		BitRate  string `json:"bit_rate"`
		Name     string `json:"format_name"`
	} `json:"format"`
}

func (f *FFmpeg) Probe(ctx context.Context, srcPath string) (*Metadata, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		srcPath,
	}

	cmd := exec.CommandContext(ctx, f.ffprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: ffprobe failed: %v", ErrInvalidInput, err)
	}

	return parseProbeOutput(output)
}

func parseProbeOutput(output []byte) (*Metadata, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("%w: failed to parse ffprobe output: %v", ErrInvalidInput, err)
	}

	metadata := &Metadata{}

	if probe.Format.Duration != "" {
		if d, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
			metadata.Duration = d
		}
	}
	if probe.Format.Size != "" {
		if s, err := strconv.ParseInt(probe.Format.Size, 10, 64); err == nil {
			metadata.FileSize = s
		}
	}
	if probe.Format.BitRate != "" {
		if b, err := strconv.ParseInt(probe.Format.BitRate, 10, 64); err == nil {
			metadata.Bitrate = b
		}
	}
	metadata.Container = strings.Split(probe.Format.Name, ",")[0]

	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "video":
			metadata.VideoCodec = stream.CodecName
			metadata.Width = stream.Width
			metadata.Height = stream.Height
			if stream.RFrameRate != "" {
				// Frame rate arrives as a ratio, e.g. "30000/1001".
				parts := strings.Split(stream.RFrameRate, "/")
				if len(parts) == 2 {
					num, _ := strconv.ParseFloat(parts[0], 64)
					den, _ := strconv.ParseFloat(parts[1], 64)
					if den > 0 {
						metadata.FrameRate = num / den
					}
				}
			}
		case "audio":
			metadata.AudioCodec = stream.CodecName
			metadata.HasAudio = true
		}
	}

	return metadata, nil
}
