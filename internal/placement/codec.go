package placement

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// recordLength is the size in bytes of the native record; kept in the text
// form for compatibility with snapshots written by the original tool.
const recordLength = 44

// ElementName is the XML element that holds an encoded placement.
const ElementName = "WINDOWPLACEMENT"

// CodecError reports malformed or incomplete placement text.
type CodecError struct {
	Field string
	Err   error
}

func (e *CodecError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("placement codec: %v", e.Err)
	}
	return fmt.Sprintf("placement codec: %s: %v", e.Field, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

var errMissing = errors.New("required field is missing")

type xmlPoint struct {
	X *string `xml:"X"`
	Y *string `xml:"Y"`
}

type xmlRect struct {
	Left   *string `xml:"Left"`
	Top    *string `xml:"Top"`
	Right  *string `xml:"Right"`
	Bottom *string `xml:"Bottom"`
}

// xmlPlacement mirrors the element layout. Leaves are strings so a missing
// field can be told apart from a zero value.
type xmlPlacement struct {
	XMLName        xml.Name  `xml:"WINDOWPLACEMENT"`
	Length         *string   `xml:"length"`
	Flags          *string   `xml:"flags"`
	ShowCmd        *string   `xml:"showCmd"`
	MinPosition    *xmlPoint `xml:"minPosition"`
	MaxPosition    *xmlPoint `xml:"maxPosition"`
	NormalPosition *xmlRect  `xml:"normalPosition"`
}

type xmlPointOut struct {
	X int32 `xml:"X"`
	Y int32 `xml:"Y"`
}

type xmlRectOut struct {
	Left   int32 `xml:"Left"`
	Top    int32 `xml:"Top"`
	Right  int32 `xml:"Right"`
	Bottom int32 `xml:"Bottom"`
}

type xmlPlacementOut struct {
	XMLName        xml.Name    `xml:"WINDOWPLACEMENT"`
	Length         int         `xml:"length"`
	Flags          int32       `xml:"flags"`
	ShowCmd        int32       `xml:"showCmd"`
	MinPosition    xmlPointOut `xml:"minPosition"`
	MaxPosition    xmlPointOut `xml:"maxPosition"`
	NormalPosition xmlRectOut  `xml:"normalPosition"`
}

// Encode renders p as a WINDOWPLACEMENT element.
func Encode(p Placement) (string, error) {
	out := xmlPlacementOut{
		Length:      recordLength,
		Flags:       int32(p.Flags),
		ShowCmd:     int32(p.ShowCmd),
		MinPosition: xmlPointOut{X: p.MinPosition.X, Y: p.MinPosition.Y},
		MaxPosition: xmlPointOut{X: p.MaxPosition.X, Y: p.MaxPosition.Y},
		NormalPosition: xmlRectOut{
			Left:   p.NormalPosition.Left,
			Top:    p.NormalPosition.Top,
			Right:  p.NormalPosition.Right,
			Bottom: p.NormalPosition.Bottom,
		},
	}
	data, err := xml.Marshal(out)
	if err != nil {
		return "", &CodecError{Err: err}
	}
	return string(data), nil
}

// Decode parses a WINDOWPLACEMENT element produced by Encode or by the
// original tool. Every field except length is required.
func Decode(text string) (Placement, error) {
	if strings.TrimSpace(text) == "" {
		return Placement{}, &CodecError{Err: errors.New("empty input")}
	}

	var in xmlPlacement
	if err := xml.Unmarshal([]byte(text), &in); err != nil {
		return Placement{}, &CodecError{Err: err}
	}

	d := decoder{}
	p := Placement{
		Flags:   d.flags(in.Flags),
		ShowCmd: ShowCommand(d.int32("showCmd", in.ShowCmd)),
	}
	p.MinPosition = d.point("minPosition", in.MinPosition)
	p.MaxPosition = d.point("maxPosition", in.MaxPosition)
	p.NormalPosition = d.rect("normalPosition", in.NormalPosition)
	if in.Length != nil {
		d.int32("length", in.Length)
	}
	if d.err != nil {
		return Placement{}, d.err
	}
	return p, nil
}

// decoder keeps the first field error so Decode reads top to bottom.
type decoder struct {
	err error
}

func (d *decoder) fail(field string, err error) {
	if d.err == nil {
		d.err = &CodecError{Field: field, Err: err}
	}
}

func (d *decoder) int32(field string, raw *string) int32 {
	if raw == nil {
		d.fail(field, errMissing)
		return 0
	}
	v, err := strconv.ParseInt(strings.TrimSpace(*raw), 10, 32)
	if err != nil {
		d.fail(field, err)
		return 0
	}
	return int32(v)
}

// flags reads the flag word as a signed 32-bit integer, the form documents
// carry it in, and keeps its bit pattern. Unsigned values above the int32
// range are accepted too.
func (d *decoder) flags(raw *string) uint32 {
	if raw == nil {
		d.fail("flags", errMissing)
		return 0
	}
	text := strings.TrimSpace(*raw)
	if v, err := strconv.ParseInt(text, 10, 32); err == nil {
		return uint32(int32(v))
	}
	v, err := strconv.ParseUint(text, 10, 32)
	if err != nil {
		d.fail("flags", err)
		return 0
	}
	return uint32(v)
}

func (d *decoder) point(field string, raw *xmlPoint) Point {
	if raw == nil {
		d.fail(field, errMissing)
		return Point{}
	}
	return Point{
		X: d.int32(field+".X", raw.X),
		Y: d.int32(field+".Y", raw.Y),
	}
}

func (d *decoder) rect(field string, raw *xmlRect) Rect {
	if raw == nil {
		d.fail(field, errMissing)
		return Rect{}
	}
	return Rect{
		Left:   d.int32(field+".Left", raw.Left),
		Top:    d.int32(field+".Top", raw.Top),
		Right:  d.int32(field+".Right", raw.Right),
		Bottom: d.int32(field+".Bottom", raw.Bottom),
	}
}
