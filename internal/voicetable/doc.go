// Package voicetable loads voice-line text tables and resolves audio clips to
// the record that titles and captions them.
//
// Two table layouts are supported. A charwords table is a keyed object (the
// keys look like "char_4202_haruka_CN_001"), optionally wrapped in a
// "charWords" object, whose entries embed charId, voiceId, voiceTitle and
// voiceText. A character table is keyed by character id and lists the lines
// under profileVoice and voices arrays. Both are parsed once into an
// in-memory Source; the Resolver then tries exact keys before falling back to
// a scan of every record.
package voicetable
