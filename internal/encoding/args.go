package encoding

import (
	"fmt"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"voicereel/internal/timeline"
)

// SegmentArgs builds the ffmpeg arguments that encode one segment: the frame
// looped for the picture duration and the clip padded with silence to match.
func SegmentArgs(seg timeline.Segment, params Params, audioCodec string, fps int, transitions bool, output string) []string {
	picture := seconds(seg.Picture)

	video := ffmpeg.Input(seg.FramePath, ffmpeg.KwArgs{
		"loop":      1,
		"framerate": fps,
		"t":         picture,
	})
	if transitions && seg.FadeIn > 0 {
		video = video.Filter("fade", ffmpeg.Args{}, ffmpeg.KwArgs{"t": "in", "st": "0", "d": seconds(seg.FadeIn)})
	}
	if transitions && seg.FadeOut > 0 {
		start := seg.Picture - seg.FadeOut
		video = video.Filter("fade", ffmpeg.Args{}, ffmpeg.KwArgs{"t": "out", "st": seconds(start), "d": seconds(seg.FadeOut)})
	}
	video = video.Filter("format", ffmpeg.Args{"yuv420p"})

	audio := ffmpeg.Input(seg.Unit.SourcePath).Filter("apad", ffmpeg.Args{}, ffmpeg.KwArgs{"whole_dur": picture})

	kw := ffmpeg.KwArgs{
		"c:v": params.Codec,
		"c:a": audioCodec,
		"r":   fps,
		"t":   picture,
	}
	if params.Preset != "" {
		kw["preset"] = params.Preset
	}
	if params.Bitrate != "" {
		kw["b:v"] = params.Bitrate
	}
	if params.Threads > 0 {
		kw["threads"] = params.Threads
	}
	return ffmpeg.Output([]*ffmpeg.Stream{video, audio}, output, kw).OverWriteOutput().GetArgs()
}

// ConcatArgs builds the ffmpeg arguments that join the segments listed in
// listPath. Video is stream-copied; audio is decoded and encoded once so each
// segment's encoder priming does not accumulate across the joined track.
func ConcatArgs(listPath, audioCodec, output string) []string {
	return ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": "0"}).
		Output(output, ffmpeg.KwArgs{"c:v": "copy", "c:a": audioCodec, "movflags": "+faststart", "f": "mp4"}).
		OverWriteOutput().
		GetArgs()
}

// ConcatList renders a concat demuxer list for paths.
func ConcatList(paths []string) string {
	var b strings.Builder
	b.WriteString("ffconcat version 1.0\n")
	for _, path := range paths {
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(path, "'", `'\''`))
		b.WriteString("'\n")
	}
	return b.String()
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
