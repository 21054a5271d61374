// Package openlyrics holds the song representation used throughout lyricdeck,
// modelled on the OpenLyrics XML format, together with its XML and JSON codecs.
package openlyrics

// Song is one song's metadata and lyric structure.
type Song struct {
	Properties Properties `xml:"properties" json:"properties"`
	Lyrics     Lyrics     `xml:"lyrics" json:"lyrics,omitempty"`
}

// Properties is the song metadata block. Titles must hold at least one entry.
type Properties struct {
	Titles        []Title    `xml:"titles>title" json:"titles"`
	Authors       []Author   `xml:"authors>author,omitempty" json:"authors,omitempty"`
	Copyright     string     `xml:"copyright,omitempty" json:"copyright,omitempty"`
	CCLINo        *uint64    `xml:"ccliNo,omitempty" json:"ccliNo,omitempty"`
	Released      string     `xml:"released,omitempty" json:"released,omitempty"`
	Transposition *int       `xml:"transposition,omitempty" json:"transposition,omitempty"`
	Tempo         *Tempo     `xml:"tempo,omitempty" json:"tempo,omitempty"`
	Key           string     `xml:"key,omitempty" json:"key,omitempty"`
	TimeSignature string     `xml:"timeSignature,omitempty" json:"timeSignature,omitempty"`
	Variant       string     `xml:"variant,omitempty" json:"variant,omitempty"`
	Publisher     string     `xml:"publisher,omitempty" json:"publisher,omitempty"`
	Version       string     `xml:"version,omitempty" json:"version,omitempty"`
	Keywords      string     `xml:"keywords,omitempty" json:"keywords,omitempty"`
	VerseOrder    string     `xml:"verseOrder,omitempty" json:"verseOrder,omitempty"`
	Songbooks     []Songbook `xml:"songbooks>songbook,omitempty" json:"songbooks,omitempty"`
	Themes        []Theme    `xml:"themes>theme,omitempty" json:"themes,omitempty"`
	Comments      []string   `xml:"comments>comment,omitempty" json:"comments,omitempty"`
}

// Title is one of a song's titles.
type Title struct {
	Text     string `xml:",chardata" json:"text"`
	Lang     string `xml:"lang,attr,omitempty" json:"lang,omitempty"`
	Translit string `xml:"translit,attr,omitempty" json:"translit,omitempty"`
	Original *bool  `xml:"original,attr,omitempty" json:"original,omitempty"`
}

// Author credits a person with an optional role such as "words" or "music".
type Author struct {
	Name string `xml:",chardata" json:"name"`
	Type string `xml:"type,attr,omitempty" json:"type,omitempty"`
	Lang string `xml:"lang,attr,omitempty" json:"lang,omitempty"`
}

// Tempo types.
const (
	TempoBPM  = "bpm"
	TempoText = "text"
)

// Tempo is either a beats-per-minute number or a free-text description.
type Tempo struct {
	Type  string `xml:"type,attr" json:"type"`
	Value string `xml:",chardata" json:"value"`
}

// Songbook references the song's entry in a printed songbook.
type Songbook struct {
	Name  string `xml:"name,attr" json:"name"`
	Entry string `xml:"entry,attr,omitempty" json:"entry,omitempty"`
}

// Theme is a topic tag for the song.
type Theme struct {
	Text     string `xml:",chardata" json:"text"`
	Lang     string `xml:"lang,attr,omitempty" json:"lang,omitempty"`
	Translit string `xml:"translit,attr,omitempty" json:"translit,omitempty"`
}

// Lyrics is the ordered list of lyric entries of a song.
type Lyrics []LyricEntry

// LyricEntry is either a *Verse or an *Instrument.
type LyricEntry interface {
	EntryName() string
	isLyricEntry()
}

// Verse is a named block of sung text split into pages of Lines.
type Verse struct {
	Name     string  `json:"name"`
	Lang     string  `json:"lang,omitempty"`
	Translit string  `json:"translit,omitempty"`
	Lines    []Lines `json:"lines,omitempty"`
}

// Instrument is a named instrumental break. Its notation is never shown on a slide.
type Instrument struct {
	Name  string            `json:"name"`
	Lines []InstrumentLines `json:"lines,omitempty"`
}

func (v *Verse) EntryName() string      { return v.Name }
func (i *Instrument) EntryName() string { return i.Name }

func (*Verse) isLyricEntry()      {}
func (*Instrument) isLyricEntry() {}

// Lines is one page of a verse.
type Lines struct {
	Break    string   `json:"break,omitempty"`
	Part     string   `json:"part,omitempty"`
	Repeat   *int     `json:"repeat,omitempty"`
	Contents Contents `json:"contents,omitempty"`
}

// Contents is a sequence of verse content nodes.
type Contents []VerseContent

// VerseContent is one of Text, *Chord, Br, Comment or *Tag.
type VerseContent interface {
	isVerseContent()
}

// Text is a run of lyric text.
type Text string

// Br is an explicit line break.
type Br struct{}

// Comment is an annotation that is never displayed.
type Comment string

// Chord annotates the enclosed contents with a chord.
type Chord struct {
	Name      string   `json:"name,omitempty"`
	Root      string   `json:"root,omitempty"`
	Bass      string   `json:"bass,omitempty"`
	Structure string   `json:"structure,omitempty"`
	Upbeat    *bool    `json:"upbeat,omitempty"`
	Contents  Contents `json:"contents,omitempty"`
}

// Tag applies a custom formatting tag to the enclosed contents.
type Tag struct {
	Name     string   `json:"name"`
	Contents Contents `json:"contents,omitempty"`
}

func (Text) isVerseContent()    {}
func (Br) isVerseContent()      {}
func (Comment) isVerseContent() {}
func (*Chord) isVerseContent()  {}
func (*Tag) isVerseContent()    {}

// InstrumentLines is one line of instrumental notation.
type InstrumentLines struct {
	Contents InstrumentContents `json:"contents,omitempty"`
}

// InstrumentContents is a sequence of instrumental notation nodes.
type InstrumentContents []InstrumentContent

// InstrumentContent is either an *InstrumentChord or a *Beat.
type InstrumentContent interface {
	isInstrumentContent()
}

// InstrumentChord is a chord played in an instrumental line.
type InstrumentChord struct {
	Name      string            `xml:"name,attr,omitempty" json:"name,omitempty"`
	Root      string            `xml:"root,attr,omitempty" json:"root,omitempty"`
	Bass      string            `xml:"bass,attr,omitempty" json:"bass,omitempty"`
	Structure string            `xml:"structure,attr,omitempty" json:"structure,omitempty"`
	Upbeat    *bool             `xml:"upbeat,attr,omitempty" json:"upbeat,omitempty"`
	Chords    []InstrumentChord `xml:"chord" json:"chords,omitempty"`
}

// Beat groups the chords played on one beat.
type Beat struct {
	Chords []InstrumentChord `xml:"chord" json:"chords,omitempty"`
}

func (*InstrumentChord) isInstrumentContent() {}
func (*Beat) isInstrumentContent()            {}

// Title returns the primary display title, or "" for a song without titles.
func (s Song) Title() string {
	if len(s.Properties.Titles) == 0 {
		return ""
	}
	return s.Properties.Titles[0].Text
}

// Entry returns the lyric entry at index, if any.
func (s Song) Entry(index int) (LyricEntry, bool) {
	if index < 0 || index >= len(s.Lyrics) {
		return nil, false
	}
	return s.Lyrics[index], true
}
