// Package timeline turns a character's audio clips into an ordered list of
// video segments.
//
// Discover lists the clips for a character and ProbeDurations measures them.
// An Assembler then resolves each clip to its voice record, renders the still
// frame for it, and emits a Segment whose picture outlasts the audio by the
// configured interval. Clips without a record are skipped and reported; a
// character with no renderable clips yields ErrEmptyTimeline instead of an
// empty video.
package timeline
