package config

// Layout profile names.
const (
	ProfileArknights = "arknights"
	ProfileEndfield  = "endfield"
)

// Voice table formats.
const (
	TableCharWords      = "charwords"
	TableCharacterTable = "character_table"
)

// Voice id derivation modes applied to audio file stems.
const (
	VoiceIDSegment = "segment"
	VoiceIDStem    = "stem"
)

// ProfileDefaults holds the per-profile job settings used when a character
// entry leaves them empty.
type ProfileDefaults struct {
	AudioPattern string
	VoiceIDMode  string
	TableFormat  string
	VoicePrefix  string
	Interval     float64
	Fade         float64
	FPS          int
}

var profileDefaults = map[string]ProfileDefaults{
	ProfileArknights: {
		AudioPattern: "CN_*.wav",
		VoiceIDMode:  VoiceIDSegment,
		TableFormat:  TableCharWords,
		VoicePrefix:  "CN_",
		Interval:     3,
		Fade:         1,
		FPS:          24,
	},
	ProfileEndfield: {
		AudioPattern: "*.mp3",
		VoiceIDMode:  VoiceIDStem,
		TableFormat:  TableCharacterTable,
		VoicePrefix:  "",
		Interval:     1,
		Fade:         0.5,
		FPS:          30,
	},
}

// DefaultsForProfile reports the job defaults registered for a profile name.
func DefaultsForProfile(name string) (ProfileDefaults, bool) {
	d, ok := profileDefaults[name]
	return d, ok
}

// ProfileNames lists the supported layout profiles.
func ProfileNames() []string {
	return []string{ProfileArknights, ProfileEndfield}
}

// OffsetXY returns the configured character art offset, or (0, 0).
func (ch Character) OffsetXY() (int, int) {
	if len(ch.Offset) != 2 {
		return 0, 0
	}
	return ch.Offset[0], ch.Offset[1]
}
