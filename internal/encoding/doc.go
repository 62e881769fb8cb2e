// Package encoding exports an assembled timeline as a single video file.
//
// Each segment is encoded on its own (looped still frame plus padded audio,
// optional fades) and the segments are then joined with the concat demuxer
// using stream copy. Encoder parameters come from one of two paths: the
// hardware path when ffmpeg advertises the configured accelerated encoder,
// otherwise the software path. A failed encode is reported as *EncodeError
// and is not retried with the other path.
//
// ffmpeg argument lists are built with ffmpeg-go and executed through an
// injectable CommandRunner so tests can assert on arguments without ffmpeg.
// The final file is written beside the destination and renamed into place.
package encoding
