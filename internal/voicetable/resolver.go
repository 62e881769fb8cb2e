package voicetable

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound reports that no record matches a voice id.
var ErrNotFound = errors.New("voice record not found")

// Resolver maps (character, voice id) pairs to records.
type Resolver struct {
	source Source
	prefix string
}

// NewResolver builds a resolver over source. prefix is the canonical voice
// id prefix ("CN_" for charwords tables, empty when ids are used verbatim).
func NewResolver(source Source, prefix string) *Resolver {
	return &Resolver{source: source, prefix: prefix}
}

// Canonical returns the lookup form of a raw voice id.
func (r *Resolver) Canonical(raw string) string {
	raw = strings.TrimSpace(raw)
	if r.prefix == "" || strings.HasPrefix(raw, r.prefix) {
		return raw
	}
	return r.prefix + raw
}

// Resolve returns the record for rawVoiceID. Exact keys are tried first, in
// order "{char}_{canonical}" then "{char}_{prefix}{raw}"; otherwise the first
// record whose embedded character and voice id match wins.
func (r *Resolver) Resolve(characterID, rawVoiceID string) (Record, error) {
	if r == nil || r.source == nil {
		return Record{}, fmt.Errorf("%w: no voice table loaded", ErrNotFound)
	}
	raw := strings.TrimSpace(rawVoiceID)
	canonical := r.Canonical(raw)

	for _, key := range r.candidateKeys(characterID, raw, canonical) {
		if rec, ok := r.source.Lookup(key); ok {
			return rec, nil
		}
	}

	rec, ok := r.source.Scan(func(rec Record) bool {
		return rec.CharacterID == characterID && rec.VoiceID == canonical
	})
	if ok {
		return rec, nil
	}
	return Record{}, fmt.Errorf("%w: %s voice %s", ErrNotFound, characterID, canonical)
}

func (r *Resolver) candidateKeys(characterID, raw, canonical string) []string {
	first := characterID + "_" + canonical
	second := characterID + "_" + r.prefix + raw
	if second == first {
		return []string{first}
	}
	return []string{first, second}
}
