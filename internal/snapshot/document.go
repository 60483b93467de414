package snapshot

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/1broseidon/placekeeper/internal/placement"
	"github.com/1broseidon/placekeeper/internal/platform"
)

const rootElement = "WindowPlacementList"

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// legacyTimeLayout is how older snapshot files stamp their creation time.
const legacyTimeLayout = "2006-01-02T15:04:05.9999999"

type documentOut struct {
	XMLName xml.Name    `xml:"WindowPlacementList"`
	Created string      `xml:"created,attr"`
	Windows []windowOut `xml:"Window"`
}

type windowOut struct {
	Handle      int64  `xml:"Handle"`
	ProcessName string `xml:"ProcessName"`
	Title       string `xml:"WindowTitle"`
	Placement   string `xml:",innerxml"`
}

type documentIn struct {
	XMLName xml.Name   `xml:"WindowPlacementList"`
	Created string     `xml:"created,attr"`
	Windows []windowIn `xml:"Window"`
}

type windowIn struct {
	Handle      *string       `xml:"Handle"`
	ProcessName string        `xml:"ProcessName"`
	Title       string        `xml:"WindowTitle"`
	Placement   *rawPlacement `xml:"WINDOWPLACEMENT"`
}

type rawPlacement struct {
	Inner string `xml:",innerxml"`
}

// Write serializes s as a WindowPlacementList document.
func Write(w io.Writer, s *Snapshot) error {
	if s == nil {
		return errors.New("snapshot is nil")
	}

	doc := documentOut{
		Created: s.CreatedAt.Format(time.RFC3339Nano),
		Windows: make([]windowOut, 0, len(s.Entries)),
	}
	for _, e := range s.Entries {
		encoded, err := placement.Encode(e.Placement)
		if err != nil {
			return fmt.Errorf("failed to encode placement of %q: %w", e.Title, err)
		}
		doc.Windows = append(doc.Windows, windowOut{
			Handle:      int64(e.Handle),
			ProcessName: e.ProcessName,
			Title:       e.Title,
			Placement:   encoded,
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Read parses a WindowPlacementList document. Entries that cannot be decoded
// are collected in Snapshot.Rejected instead of failing the whole read.
func Read(r io.Reader) (*Snapshot, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	var doc documentIn
	if err := xml.NewDecoder(br).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	created, err := parseCreated(doc.Created)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{CreatedAt: created}
	for i, w := range doc.Windows {
		entry, err := decodeWindow(w)
		if err != nil {
			snap.Rejected = append(snap.Rejected, RejectedEntry{Index: i, Title: w.Title, Err: err})
			continue
		}
		snap.Entries = append(snap.Entries, entry)
	}
	return snap, nil
}

func decodeWindow(w windowIn) (WindowEntry, error) {
	if w.Handle == nil {
		return WindowEntry{}, errors.New("missing Handle element")
	}
	handle, err := strconv.ParseInt(strings.TrimSpace(*w.Handle), 10, 64)
	if err != nil {
		return WindowEntry{}, fmt.Errorf("invalid Handle: %w", err)
	}
	if strings.TrimSpace(w.Title) == "" {
		return WindowEntry{}, errors.New("empty WindowTitle")
	}
	if w.Placement == nil {
		return WindowEntry{}, &placement.CodecError{Field: placement.ElementName, Err: errors.New("element is missing")}
	}

	p, err := placement.Decode("<" + placement.ElementName + ">" + w.Placement.Inner + "</" + placement.ElementName + ">")
	if err != nil {
		return WindowEntry{}, err
	}
	return WindowEntry{
		Handle:      platform.Handle(handle),
		ProcessName: w.ProcessName,
		Title:       w.Title,
		Placement:   p,
	}, nil
}

func parseCreated(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(legacyTimeLayout, value, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid %s created timestamp %q", rootElement, value)
}
