// Package export encodes slot lists for output.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/javiermolinar/huddle/internal/grid"
	"github.com/javiermolinar/huddle/internal/ics"
	"github.com/javiermolinar/huddle/internal/poll"
)

// ErrUnknownFormat is returned for format names Write does not support.
var ErrUnknownFormat = errors.New("unknown export format")

// Format names an output encoding.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatICS  Format = "ics"
)

// Formats lists every supported format, in help order.
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatICS}

// ParseFormat resolves a user supplied format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Record is the serialized shape of one slot.
type Record struct {
	From         string   `json:"from" yaml:"from"`
	To           string   `json:"to" yaml:"to"`
	Minutes      int      `json:"minutes" yaml:"minutes"`
	Weight       int      `json:"weight" yaml:"weight"`
	Contributors []string `json:"contributors,omitempty" yaml:"contributors,omitempty"`
}

// Document is the top-level json/yaml payload.
type Document struct {
	Poll     string   `json:"poll" yaml:"poll"`
	Title    string   `json:"title" yaml:"title"`
	TimeZone string   `json:"time_zone" yaml:"time_zone"`
	Slots    []Record `json:"slots" yaml:"slots"`
}

// NewDocument converts slots into their serialized form.
func NewDocument(p *poll.Poll, slots []grid.Slot) Document {
	doc := Document{Poll: p.ID, Title: p.Title, TimeZone: p.TimeZone, Slots: make([]Record, 0, len(slots))}
	for _, s := range slots {
		doc.Slots = append(doc.Slots, Record{
			From:         s.From.Format(time.RFC3339),
			To:           s.To.Format(time.RFC3339),
			Minutes:      int(s.Duration() / time.Minute),
			Weight:       s.Weight,
			Contributors: s.Contributors,
		})
	}
	return doc
}

// Write encodes slots of p to w in the given format.
func Write(w io.Writer, format Format, p *poll.Poll, slots []grid.Slot, now time.Time) error {
	switch format {
	case FormatText:
		return writeText(w, slots)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(NewDocument(p, slots)); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewDocument(p, slots)); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case FormatICS:
		return ics.Export(w, p, slots, now)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeText(w io.Writer, slots []grid.Slot) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, s := range slots {
		fmt.Fprintf(tw, "%s\t%s-%s\tx%d\t%s\n",
			s.From.Format("Mon 2006-01-02"),
			s.From.Format("15:04"),
			endClock(s),
			s.Weight,
			strings.Join(s.Contributors, ", "))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing text: %w", err)
	}
	return nil
}

// endClock prints a slot ending at the next midnight as 24:00.
func endClock(s grid.Slot) string {
	if s.To.Day() != s.From.Day() && s.To.Hour() == 0 && s.To.Minute() == 0 {
		return "24:00"
	}
	return s.To.Format("15:04")
}
