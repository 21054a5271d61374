package openlyrics

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Namespace is the OpenLyrics XML namespace written on encoded songs.
const Namespace = "http://openlyrics.info/namespace/2009/song"

const formatVersion = "0.9"

var (
	// ErrNotASong is returned when the document root is not a song element.
	ErrNotASong = errors.New("document is not an openlyrics song")
	// ErrNoTitle is returned when a decoded song has no title.
	ErrNoTitle = errors.New("song has no title")
)

// Unmarshal decodes an OpenLyrics XML document.
func Unmarshal(data []byte) (Song, error) {
	d := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			return Song{}, ErrNotASong
		}
		if err != nil {
			return Song{}, fmt.Errorf("decode song: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "song" {
			return Song{}, ErrNotASong
		}

		var song Song
		if err := d.DecodeElement(&song, &start); err != nil {
			return Song{}, fmt.Errorf("decode song: %w", err)
		}
		if len(song.Properties.Titles) == 0 {
			return Song{}, ErrNoTitle
		}
		return song, nil
	}
}

// Marshal encodes song as an OpenLyrics XML document. Output is not indented
// since verse lines are mixed content.
func Marshal(song Song) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	start := xml.StartElement{
		Name: xml.Name{Local: "song"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "xmlns"}, Value: Namespace},
			{Name: xml.Name{Local: "version"}, Value: formatVersion},
		},
	}
	if err := enc.EncodeElement(song, start); err != nil {
		return nil, fmt.Errorf("encode song: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("encode song: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// MarshalXML writes the lyrics element with its verse and instrument children.
func (l Lyrics) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, entry := range l {
		var err error
		switch entry := entry.(type) {
		case *Verse:
			err = encodeVerse(e, entry)
		case *Instrument:
			err = encodeInstrument(e, entry)
		default:
			err = fmt.Errorf("encode lyric entry: unexpected %T", entry)
		}
		if err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// UnmarshalXML reads verse and instrument children, skipping unknown elements.
func (l *Lyrics) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var entries Lyrics
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "verse":
				verse, err := decodeVerse(d, t)
				if err != nil {
					return err
				}
				entries = append(entries, verse)
			case "instrument":
				instrument, err := decodeInstrument(d, t)
				if err != nil {
					return err
				}
				entries = append(entries, instrument)
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			*l = entries
			return nil
		}
	}
}

func decodeVerse(d *xml.Decoder, start xml.StartElement) (*Verse, error) {
	verse := &Verse{
		Name:     attr(start, "name"),
		Lang:     attr(start, "lang"),
		Translit: attr(start, "translit"),
	}
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "lines" {
				if err := d.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			lines, err := decodeLines(d, t)
			if err != nil {
				return nil, err
			}
			verse.Lines = append(verse.Lines, lines)
		case xml.EndElement:
			return verse, nil
		}
	}
}

func decodeLines(d *xml.Decoder, start xml.StartElement) (Lines, error) {
	lines := Lines{
		Break: attr(start, "break"),
		Part:  attr(start, "part"),
	}
	if raw := attr(start, "repeat"); raw != "" {
		repeat, err := strconv.Atoi(raw)
		if err != nil {
			return Lines{}, fmt.Errorf("lines repeat %q: %w", raw, err)
		}
		lines.Repeat = &repeat
	}

	contents, err := decodeContents(d)
	if err != nil {
		return Lines{}, err
	}
	lines.Contents = contents
	return lines, nil
}

// decodeContents reads mixed content up to and including the enclosing end element.
func decodeContents(d *xml.Decoder) (Contents, error) {
	var contents Contents
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				contents = append(contents, Text(string(t)))
			}
		case xml.StartElement:
			switch t.Name.Local {
			case "br":
				if err := d.Skip(); err != nil {
					return nil, err
				}
				contents = append(contents, Br{})
			case "comment":
				var text string
				if err := d.DecodeElement(&text, &t); err != nil {
					return nil, err
				}
				contents = append(contents, Comment(text))
			case "chord":
				chord := &Chord{
					Name:      attr(t, "name"),
					Root:      attr(t, "root"),
					Bass:      attr(t, "bass"),
					Structure: attr(t, "structure"),
				}
				upbeat, err := boolAttr(t, "upbeat")
				if err != nil {
					return nil, err
				}
				chord.Upbeat = upbeat
				if chord.Contents, err = decodeContents(d); err != nil {
					return nil, err
				}
				contents = append(contents, chord)
			case "tag":
				tag := &Tag{Name: attr(t, "name")}
				if tag.Contents, err = decodeContents(d); err != nil {
					return nil, err
				}
				contents = append(contents, tag)
			default:
				if err := d.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			return contents, nil
		}
	}
}

func decodeInstrument(d *xml.Decoder, start xml.StartElement) (*Instrument, error) {
	instrument := &Instrument{Name: attr(start, "name")}
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "lines" {
				if err := d.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			lines, err := decodeInstrumentLines(d)
			if err != nil {
				return nil, err
			}
			instrument.Lines = append(instrument.Lines, lines)
		case xml.EndElement:
			return instrument, nil
		}
	}
}

func decodeInstrumentLines(d *xml.Decoder) (InstrumentLines, error) {
	var lines InstrumentLines
	for {
		tok, err := d.Token()
		if err != nil {
			return InstrumentLines{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "chord":
				chord := &InstrumentChord{}
				if err := d.DecodeElement(chord, &t); err != nil {
					return InstrumentLines{}, err
				}
				lines.Contents = append(lines.Contents, chord)
			case "beat":
				beat := &Beat{}
				if err := d.DecodeElement(beat, &t); err != nil {
					return InstrumentLines{}, err
				}
				lines.Contents = append(lines.Contents, beat)
			default:
				if err := d.Skip(); err != nil {
					return InstrumentLines{}, err
				}
			}
		case xml.EndElement:
			return lines, nil
		}
	}
}

func encodeVerse(e *xml.Encoder, verse *Verse) error {
	start := element("verse",
		"name", verse.Name,
		"lang", verse.Lang,
		"translit", verse.Translit,
	)
	// The name attribute is required even when empty.
	if verse.Name == "" {
		start.Attr = append([]xml.Attr{{Name: xml.Name{Local: "name"}}}, start.Attr...)
	}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, lines := range verse.Lines {
		repeat := ""
		if lines.Repeat != nil {
			repeat = strconv.Itoa(*lines.Repeat)
		}
		linesStart := element("lines",
			"break", lines.Break,
			"part", lines.Part,
			"repeat", repeat,
		)
		if err := e.EncodeToken(linesStart); err != nil {
			return err
		}
		if err := encodeContents(e, lines.Contents); err != nil {
			return err
		}
		if err := e.EncodeToken(linesStart.End()); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

func encodeContents(e *xml.Encoder, contents Contents) error {
	for _, content := range contents {
		var err error
		switch c := content.(type) {
		case Text:
			err = e.EncodeToken(xml.CharData(c))
		case Br:
			br := element("br")
			if err = e.EncodeToken(br); err == nil {
				err = e.EncodeToken(br.End())
			}
		case Comment:
			err = e.EncodeElement(string(c), element("comment"))
		case *Chord:
			upbeat := ""
			if c.Upbeat != nil {
				upbeat = strconv.FormatBool(*c.Upbeat)
			}
			err = encodeNested(e, element("chord",
				"name", c.Name,
				"root", c.Root,
				"bass", c.Bass,
				"structure", c.Structure,
				"upbeat", upbeat,
			), c.Contents)
		case *Tag:
			err = encodeNested(e, element("tag", "name", c.Name), c.Contents)
		default:
			err = fmt.Errorf("encode verse content: unexpected %T", content)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func encodeNested(e *xml.Encoder, start xml.StartElement, contents Contents) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := encodeContents(e, contents); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

func encodeInstrument(e *xml.Encoder, instrument *Instrument) error {
	start := element("instrument", "name", instrument.Name)
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, lines := range instrument.Lines {
		linesStart := element("lines")
		if err := e.EncodeToken(linesStart); err != nil {
			return err
		}
		for _, content := range lines.Contents {
			var err error
			switch c := content.(type) {
			case *InstrumentChord:
				err = e.EncodeElement(c, element("chord"))
			case *Beat:
				err = e.EncodeElement(c, element("beat"))
			default:
				err = fmt.Errorf("encode instrument content: unexpected %T", content)
			}
			if err != nil {
				return err
			}
		}
		if err := e.EncodeToken(linesStart.End()); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// element builds a start element from name/value attribute pairs, dropping empty values.
func element(name string, attrs ...string) xml.StartElement {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i+1] == "" {
			continue
		}
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: attrs[i]}, Value: attrs[i+1]})
	}
	return start
}

func attr(start xml.StartElement, name string) string {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func boolAttr(start xml.StartElement, name string) (*bool, error) {
	raw := attr(start, name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("attribute %s %q: %w", name, raw, err)
	}
	return &value, nil
}
