// Package notes models rhythm-game charts: the song metadata, the timed
// notes placed on lanes, and the JSON chart files tying a chart to the
// gameplay recording it was annotated from.
package notes

import (
	"fmt"
	"math/big"
)

// SongType is the color type of a song.
type SongType string

const (
	SongTypeAll     SongType = "ALL"
	SongTypeCute    SongType = "CUTE"
	SongTypeCool    SongType = "COOL"
	SongTypePassion SongType = "PASSION"
)

// ParseSongType validates a song type string.
func ParseSongType(s string) (SongType, error) {
	switch t := SongType(s); t {
	case SongTypeAll, SongTypeCute, SongTypeCool, SongTypePassion:
		return t, nil
	}

	return "", fmt.Errorf("unknown song type %q", s)
}

// SongCategory is the play-mode/difficulty category of a song.
type SongCategory string

const (
	CategoryWideDebut      SongCategory = "WIDE:DEBUT"
	CategoryWideRegular    SongCategory = "WIDE:REGULAR"
	CategoryWidePro        SongCategory = "WIDE:PRO"
	CategoryWideMaster     SongCategory = "WIDE:MASTER"
	CategoryWideMasterPlus SongCategory = "WIDE:MASTER+"
	CategoryWitchWitch     SongCategory = "WITCH:WITCH"
	CategorySmartLight     SongCategory = "SMART:LIGHT"
	CategorySmartTrick     SongCategory = "SMART:TRICK"
	CategoryGrandPiano     SongCategory = "GRAND:PIANO"
	CategoryGrandForte     SongCategory = "GRAND:FORTE"
)

// LaneNumber maps a song category to the number of lanes its charts use.
var LaneNumber = map[SongCategory]int{
	CategorySmartLight:     1,
	CategorySmartTrick:     1,
	CategoryWideDebut:      5,
	CategoryWideRegular:    5,
	CategoryWidePro:        5,
	CategoryWideMaster:     5,
	CategoryWideMasterPlus: 5,
	CategoryWitchWitch:     5,
	CategoryGrandPiano:     15,
	CategoryGrandForte:     15,
}

// ParseSongCategory validates a song category string.
func ParseSongCategory(s string) (SongCategory, error) {
	if _, ok := LaneNumber[SongCategory(s)]; ok {
		return SongCategory(s), nil
	}

	return "", fmt.Errorf("unknown song category %q", s)
}

// NoteType identifies the kind of a note.
type NoteType string

const (
	NoteStart           NoteType = "START"
	NoteEnd             NoteType = "END"
	NoteTap             NoteType = "TAP"
	NoteFlickLeft       NoteType = "FLICK:LEFT"
	NoteFlickRight      NoteType = "FLICK:RIGHT"
	NoteLongOn          NoteType = "LONG:ON"
	NoteLongOff         NoteType = "LONG:OFF"
	NoteLongFlickLeft   NoteType = "LONG:FLICK:LEFT"
	NoteLongFlickRight  NoteType = "LONG:FLICK:RIGHT"
	NoteSlideOn         NoteType = "SLIDE:ON"
	NoteSlidePass       NoteType = "SLIDE:PASS"
	NoteSlideOff        NoteType = "SLIDE:OFF"
	NoteSlideFlickLeft  NoteType = "SLIDE:FLICK:LEFT"
	NoteSlideFlickRight NoteType = "SLIDE:FLICK:RIGHT"
	NoteDamage          NoteType = "DAMAGE"
)

var noteTypes = map[NoteType]bool{
	NoteStart: true, NoteEnd: true, NoteTap: true,
	NoteFlickLeft: true, NoteFlickRight: true,
	NoteLongOn: true, NoteLongOff: true,
	NoteLongFlickLeft: true, NoteLongFlickRight: true,
	NoteSlideOn: true, NoteSlidePass: true, NoteSlideOff: true,
	NoteSlideFlickLeft: true, NoteSlideFlickRight: true,
	NoteDamage: true,
}

// ParseNoteType validates a note type string.
func ParseNoteType(s string) (NoteType, error) {
	if noteTypes[NoteType(s)] {
		return NoteType(s), nil
	}

	return "", fmt.Errorf("unknown note type %q", s)
}

// Song holds the metadata of one song.
type Song struct {
	Name     string
	Category SongCategory
	Type     SongType
	Level    int
}

// NewSong returns a song with the default metadata.
func NewSong() Song {
	return Song{
		Name:     "未設定",
		Category: CategoryWideMaster,
		Type:     SongTypeAll,
		Level:    1,
	}
}

// Note is one chart event. Timestamp is in TimeBase units; Lane counts
// from the left edge. Two notes are the same chart position when their
// timestamp and lane match; width, type and time base don't take part in
// identity.
type Note struct {
	Timestamp int64
	Lane      int
	Width     int
	Type      NoteType
	TimeBase  *big.Rat
}

// NewNote returns a note with the default placement: a tap on lane 1 at
// timestamp 0 with a unit time base.
func NewNote() Note {
	return Note{
		Timestamp: 0,
		Lane:      1,
		Width:     1,
		Type:      NoteTap,
		TimeBase:  big.NewRat(1, 1),
	}
}

// key is the identity of a note inside a chart.
type key struct {
	timestamp int64
	lane      int
}

func (n Note) key() key {
	return key{timestamp: n.Timestamp, lane: n.Lane}
}

// less orders notes by timestamp, then lane.
func (n Note) less(other Note) bool {
	if n.Timestamp != other.Timestamp {
		return n.Timestamp < other.Timestamp
	}

	return n.Lane < other.Lane
}
