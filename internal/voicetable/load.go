package voicetable

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// Table formats accepted by LoadFile.
const (
	FormatCharWords      = "charwords"
	FormatCharacterTable = "character_table"
)

// ErrInvalidTable reports a table that is not a JSON object.
var ErrInvalidTable = errors.New("invalid voice table")

// LoadFile reads path and parses it with the loader for format.
func LoadFile(path, format string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read voice table: %w", err)
	}
	var src Source
	switch format {
	case FormatCharWords, "":
		src, err = LoadCharWords(data)
	case FormatCharacterTable:
		src, err = LoadCharacterTable(data)
	default:
		return nil, fmt.Errorf("voice table format %q is not supported", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

// LoadCharWords parses a keyed charwords table.
func LoadCharWords(data []byte) (Source, error) {
	root, err := parseObject(data)
	if err != nil {
		return nil, err
	}
	if wrapped := root.Get("charWords"); wrapped.IsObject() {
		root = wrapped
	}

	src := newMemorySource()
	root.ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() {
			return true
		}
		src.add(key.String(), Record{
			CharacterID: value.Get("charId").String(),
			VoiceID:     value.Get("voiceId").String(),
			Title:       normalizeText(value.Get("voiceTitle").String()),
			Body:        normalizeText(value.Get("voiceText").String()),
		})
		return true
	})
	return src, nil
}

// LoadCharacterTable parses a table keyed by character id. Each line is
// stored under "{character}_{voId}", profileVoice entries before voices.
func LoadCharacterTable(data []byte) (Source, error) {
	root, err := parseObject(data)
	if err != nil {
		return nil, err
	}

	src := newMemorySource()
	root.ForEach(func(key, character gjson.Result) bool {
		if !character.IsObject() {
			return true
		}
		charID := key.String()
		for _, list := range []string{"profileVoice", "voices"} {
			character.Get(list).ForEach(func(_, voice gjson.Result) bool {
				voID := voice.Get("voId").String()
				if voID == "" {
					return true
				}
				src.add(charID+"_"+voID, Record{
					CharacterID: charID,
					VoiceID:     voID,
					Title:       normalizeText(voice.Get("voiceTitle.id").String()),
					Body:        normalizeText(voice.Get("voiceDesc.id").String()),
				})
				return true
			})
		}
		return true
	})
	return src, nil
}

func parseObject(data []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("%w: malformed JSON", ErrInvalidTable)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: top level must be an object", ErrInvalidTable)
	}
	return root, nil
}
