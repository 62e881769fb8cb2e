// Command voicereel renders narrated voice-line videos for the characters
// listed in its configuration file.
//
// Subcommands:
//   - render: export one video per configured character
//   - preview: write a single calibration frame as PNG
//   - probe: report ffmpeg/ffprobe availability and the encode path
//   - history: list past exports from the run journal
//   - config init|validate: manage the TOML configuration
package main
