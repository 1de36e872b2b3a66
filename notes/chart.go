package notes

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sort"

	jsoniter "github.com/json-iterator/go"
	"github.com/kataras/golog"
)

var logger = golog.Child("[notes]")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Chart is one editable chart: the gameplay recording it annotates, the
// song metadata, the frame index the editor last showed, and the set of
// placed notes. At most one note can occupy a (timestamp, lane) position.
type Chart struct {
	video     string
	song      Song
	lastIndex int
	notes     map[key]Note
	path      string
}

// NewChart returns an empty chart with default song metadata.
func NewChart() *Chart {
	return &Chart{
		song:  NewSong(),
		notes: make(map[key]Note),
	}
}

// VideoFile returns the path of the annotated gameplay recording.
func (c *Chart) VideoFile() string {
	return c.video
}

// SetVideoFile records the path of the annotated gameplay recording.
func (c *Chart) SetVideoFile(path string) {
	c.video = path
}

// Song returns the song metadata.
func (c *Chart) Song() Song {
	return c.song
}

// SetSong replaces the song metadata.
func (c *Chart) SetSong(song Song) {
	c.song = song
}

// LastIndex returns the frame index shown when the chart was last saved.
func (c *Chart) LastIndex() int {
	return c.lastIndex
}

// SetLastIndex records the frame index currently shown.
func (c *Chart) SetLastIndex(index int) {
	c.lastIndex = index
}

// TotalNotes returns the number of placed notes.
func (c *Chart) TotalNotes() int {
	return len(c.notes)
}

// CurrentNotes counts the notes strictly before timestamp.
func (c *Chart) CurrentNotes(timestamp int64) int {
	count := 0
	for _, note := range c.notes {
		if note.Timestamp < timestamp {
			count++
		}
	}

	return count
}

// SearchWithinRange returns the notes between the two timestamps, both
// bounds exclusive, ordered by timestamp then lane.
func (c *Chart) SearchWithinRange(minTimestamp, maxTimestamp int64) []Note {
	var found []Note
	for _, note := range c.notes {
		if minTimestamp < note.Timestamp && note.Timestamp < maxTimestamp {
			found = append(found, note)
		}
	}

	sortNotes(found)

	return found
}

// Find returns the notes placed exactly at timestamp, ordered by lane.
func (c *Chart) Find(timestamp int64) []Note {
	var found []Note
	for _, note := range c.notes {
		if note.Timestamp == timestamp {
			found = append(found, note)
		}
	}

	sortNotes(found)

	return found
}

// Push places a note, replacing any note already at its position.
func (c *Chart) Push(note Note) {
	c.notes[note.key()] = note
}

// Remove deletes the note at the given note's position and reports
// whether one was there.
func (c *Chart) Remove(note Note) bool {
	k := note.key()
	if _, ok := c.notes[k]; !ok {
		return false
	}

	delete(c.notes, k)

	return true
}

// chartFile is the on-disk JSON shape of a chart.
type chartFile struct {
	Video     string     `json:"video"`
	Song      songFile   `json:"song"`
	LastIndex int        `json:"last_index"`
	Notes     []noteFile `json:"notes"`
}

type songFile struct {
	Name     string `json:"name"`
	Level    int    `json:"level"`
	Type     string `json:"type"`
	Category string `json:"category"`
}

type noteFile struct {
	Timestamp int64  `json:"timestamp"`
	Lane      int    `json:"lane"`
	Width     int    `json:"width"`
	Type      string `json:"type"`
	TimeBase  string `json:"time_base"`
}

// Save writes the chart file. A non-empty path becomes the chart's file
// location (parent directories are created); with an empty path the chart
// is written back to where it was last saved or loaded from.
func (c *Chart) Save(path string) error {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("couldn't save the chart: %w", err)
		}
		c.path = path
	}

	if c.path == "" {
		err := fmt.Errorf("couldn't save the chart: no file location")
		logger.Error(err)
		return err
	}

	sorted := make([]Note, 0, len(c.notes))
	for _, note := range c.notes {
		sorted = append(sorted, note)
	}
	sortNotes(sorted)

	file := chartFile{
		Video: c.video,
		Song: songFile{
			Name:     c.song.Name,
			Level:    c.song.Level,
			Type:     string(c.song.Type),
			Category: string(c.song.Category),
		},
		LastIndex: c.lastIndex,
		Notes:     make([]noteFile, 0, len(sorted)),
	}

	for _, note := range sorted {
		file.Notes = append(file.Notes, noteFile{
			Timestamp: note.Timestamp,
			Lane:      note.Lane,
			Width:     note.Width,
			Type:      string(note.Type),
			TimeBase:  note.TimeBase.RatString(),
		})
	}

	data, err := json.MarshalIndent(file, "", "    ")
	if err != nil {
		logger.Errorf("chart: %v", err)
		return fmt.Errorf("couldn't save the chart: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		logger.Errorf("chart: %v", err)
		return fmt.Errorf("couldn't save the chart: %w", err)
	}

	logger.Infof("chart: saved to %s", c.path)

	return nil
}

// Load reads the chart file at path, replacing the chart's contents.
func (c *Chart) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Errorf("chart: %v", err)
		return fmt.Errorf("couldn't load the chart: %w", err)
	}

	var file chartFile
	if err := json.Unmarshal(data, &file); err != nil {
		logger.Errorf("chart: %v", err)
		return fmt.Errorf("couldn't load the chart: %w", err)
	}

	songType, err := ParseSongType(file.Song.Type)
	if err != nil {
		return fmt.Errorf("couldn't load the chart: %w", err)
	}

	category, err := ParseSongCategory(file.Song.Category)
	if err != nil {
		return fmt.Errorf("couldn't load the chart: %w", err)
	}

	c.path = path
	c.video = file.Video
	c.lastIndex = file.LastIndex
	c.song = Song{
		Name:     file.Song.Name,
		Level:    file.Song.Level,
		Type:     songType,
		Category: category,
	}
	c.notes = make(map[key]Note, len(file.Notes))

	for _, n := range file.Notes {
		noteType, err := ParseNoteType(n.Type)
		if err != nil {
			return fmt.Errorf("couldn't load the chart: %w", err)
		}

		timeBase, ok := new(big.Rat).SetString(n.TimeBase)
		if !ok {
			return fmt.Errorf("couldn't load the chart: bad time base %q", n.TimeBase)
		}

		c.Push(Note{
			Timestamp: n.Timestamp,
			Lane:      n.Lane,
			Width:     n.Width,
			Type:      noteType,
			TimeBase:  timeBase,
		})
	}

	logger.Infof("chart: loaded from %s", c.path)

	return nil
}

func sortNotes(notes []Note) {
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].less(notes[j])
	})
}
