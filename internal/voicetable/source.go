package voicetable

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Record is one voice line.
type Record struct {
	CharacterID string
	VoiceID     string
	Title       string
	Body        string
}

// Source is a read-only keyed collection of records.
type Source interface {
	// Lookup returns the record stored under key.
	Lookup(key string) (Record, bool)
	// Scan visits records in table order and returns the first one match
	// accepts.
	Scan(match func(Record) bool) (Record, bool)
	// Len reports the number of records.
	Len() int
}

type memorySource struct {
	keys    map[string]int
	records []Record
}

func newMemorySource() *memorySource {
	return &memorySource{keys: map[string]int{}}
}

// add stores rec under key. The first record stored under a key wins.
func (s *memorySource) add(key string, rec Record) {
	if _, exists := s.keys[key]; exists {
		return
	}
	s.keys[key] = len(s.records)
	s.records = append(s.records, rec)
}

func (s *memorySource) Lookup(key string) (Record, bool) {
	idx, ok := s.keys[key]
	if !ok {
		return Record{}, false
	}
	return s.records[idx], true
}

func (s *memorySource) Scan(match func(Record) bool) (Record, bool) {
	for _, rec := range s.records {
		if match(rec) {
			return rec, true
		}
	}
	return Record{}, false
}

func (s *memorySource) Len() int { return len(s.records) }

func normalizeText(value string) string {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	return norm.NFC.String(value)
}
