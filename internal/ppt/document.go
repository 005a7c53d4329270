// Package ppt implements the presentation pipeline: property extraction and
// reapplication, slide walking, and reassembly of translated decks.
package ppt

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"sort"

	"github.com/tristan-mcinnis/ppt-translator/internal/types"
)

// Alignment is the closed enumeration of paragraph alignments carried through
// the intermediate document. Serialized as plain names.
type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "justify"
)

// ParseAlignment maps a serialized name back to an Alignment. Unknown values
// fail cleanly instead of being guessed at.
func ParseAlignment(s string) (Alignment, error) {
	switch Alignment(s) {
	case AlignLeft, AlignCenter, AlignRight, AlignJustify:
		return Alignment(s), nil
	}
	return "", types.NewAppErrorWithDetails(types.ErrInvalidInput,
		"unknown alignment value", fmt.Sprintf("%q", s), nil)
}

// VerticalAnchor is the closed enumeration of cell vertical anchors.
type VerticalAnchor string

const (
	AnchorTop    VerticalAnchor = "top"
	AnchorMiddle VerticalAnchor = "middle"
	AnchorBottom VerticalAnchor = "bottom"
)

// ParseVerticalAnchor maps a serialized name back to a VerticalAnchor.
func ParseVerticalAnchor(s string) (VerticalAnchor, error) {
	switch VerticalAnchor(s) {
	case AnchorTop, AnchorMiddle, AnchorBottom:
		return VerticalAnchor(s), nil
	}
	return "", types.NewAppErrorWithDetails(types.ErrInvalidInput,
		"unknown vertical anchor value", fmt.Sprintf("%q", s), nil)
}

// ShapeSnapshot is the serializable state of one text shape. All fields
// except Text and the geometry are optional: a nil pointer means the shape
// exposed no such property, never a guessed default. Geometry is in EMU, the
// container's native unit. Font attributes are taken from the first
// paragraph's first run, which stands in for the whole shape; mixed-run
// formatting is not modeled.
type ShapeSnapshot struct {
	Text        string     `json:"text"`
	FontSize    *int       `json:"font_size,omitempty"` // points
	FontName    *string    `json:"font_name,omitempty"`
	Bold        *bool      `json:"bold,omitempty"`
	Italic      *bool      `json:"italic,omitempty"`
	Alignment   *Alignment `json:"alignment,omitempty"`
	LineSpacing *int       `json:"line_spacing,omitempty"` // container units (points * 100)
	SpaceBefore *int       `json:"space_before,omitempty"`
	SpaceAfter  *int       `json:"space_after,omitempty"`
	FontColor   *string    `json:"font_color,omitempty"` // 6-hex-digit RGB
	Width       int64      `json:"width"`
	Height      int64      `json:"height"`
	Left        int64      `json:"left"`
	Top         int64      `json:"top"`
}

// CellSnapshot is the serializable state of one table cell. It extends the
// shape fields with cell margins (EMU) and a vertical anchor.
type CellSnapshot struct {
	Text           string          `json:"text"`
	FontSize       *int            `json:"font_size,omitempty"`
	FontName       *string         `json:"font_name,omitempty"`
	Bold           *bool           `json:"bold,omitempty"`
	Italic         *bool           `json:"italic,omitempty"`
	Alignment      *Alignment      `json:"alignment,omitempty"`
	FontColor      *string         `json:"font_color,omitempty"`
	MarginLeft     int64           `json:"margin_left"`
	MarginRight    int64           `json:"margin_right"`
	MarginTop      int64           `json:"margin_top"`
	MarginBottom   int64           `json:"margin_bottom"`
	VerticalAnchor *VerticalAnchor `json:"vertical_anchor,omitempty"`
}

// TableSnapshot is the serializable state of one table shape.
// Invariant: len(Cells) == Rows and len(Cells[i]) == Cols for every row;
// index correspondence is preserved across extraction and reapplication.
type TableSnapshot struct {
	Rows  int              `json:"row_count"`
	Cols  int              `json:"col_count"`
	Cells [][]CellSnapshot `json:"cells"`
}

// EntryKind tags a slide entry as a text shape or a table.
type EntryKind string

const (
	KindText  EntryKind = "text"
	KindTable EntryKind = "table"
)

// ShapeEntry is one extracted shape, tagged by its stable index within the
// slide. Exactly one of Shape and Table is set, matching Kind.
type ShapeEntry struct {
	ShapeIndex int
	Kind       EntryKind
	Shape      *ShapeSnapshot
	Table      *TableSnapshot
}

// SlideSnapshot is the ordered extraction result for one slide. Number is
// 1-based and stable for the lifetime of a presentation.
type SlideSnapshot struct {
	Number  int
	Entries []ShapeEntry
}

// DocumentSnapshot is the extraction result for one presentation. A fresh
// instance is produced for every pass; snapshots are never mutated in place.
type DocumentSnapshot struct {
	FileName string
	Slides   []SlideSnapshot
}

// sortSlides orders slides by number regardless of completion order.
func (d *DocumentSnapshot) sortSlides() {
	sort.Slice(d.Slides, func(i, j int) bool {
		return d.Slides[i].Number < d.Slides[j].Number
	})
}

// ============================================================
// Intermediate XML document
// ============================================================
//
// <presentation file_path="deck.pptx">
//   <slide number="1">
//     <text_element shape_index="0"><properties>{...}</properties></text_element>
//     <table_element shape_index="2"><properties>{...}</properties></table_element>
//   </slide>
// </presentation>
//
// The properties body is the flat JSON serialization of the snapshot, so a
// hand-edited body still round-trips through the assembler.

type xmlPresentation struct {
	XMLName  xml.Name   `xml:"presentation"`
	FilePath string     `xml:"file_path,attr"`
	Slides   []xmlSlide `xml:"slide"`
}

type xmlSlide struct {
	Number int          `xml:"number,attr"`
	Texts  []xmlElement `xml:"text_element"`
	Tables []xmlElement `xml:"table_element"`
}

type xmlElement struct {
	ShapeIndex int    `xml:"shape_index,attr"`
	Properties string `xml:"properties"`
}

// EncodeXML serializes the snapshot to the intermediate XML document.
func EncodeXML(doc *DocumentSnapshot) ([]byte, error) {
	out := xmlPresentation{FilePath: doc.FileName}
	for _, slide := range doc.Slides {
		xs := xmlSlide{Number: slide.Number}
		for _, entry := range slide.Entries {
			var payload interface{}
			switch entry.Kind {
			case KindText:
				payload = entry.Shape
			case KindTable:
				payload = entry.Table
			default:
				return nil, types.NewAppErrorWithDetails(types.ErrInternal,
					"unknown entry kind", string(entry.Kind), nil)
			}
			props, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				return nil, types.NewAppError(types.ErrInternal, "failed to marshal shape properties", err)
			}
			el := xmlElement{ShapeIndex: entry.ShapeIndex, Properties: string(props)}
			if entry.Kind == KindText {
				xs.Texts = append(xs.Texts, el)
			} else {
				xs.Tables = append(xs.Tables, el)
			}
		}
		out.Slides = append(out.Slides, xs)
	}

	data, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, types.NewAppError(types.ErrInternal, "failed to marshal document", err)
	}
	return append([]byte(xml.Header), data...), nil
}

// DecodeXML parses an intermediate XML document back into a snapshot.
// Entries within each slide are ordered by shape index; slides by number.
func DecodeXML(data []byte) (*DocumentSnapshot, error) {
	var in xmlPresentation
	if err := xml.Unmarshal(data, &in); err != nil {
		return nil, types.NewAppError(types.ErrInvalidInput, "failed to parse intermediate document", err)
	}

	doc := &DocumentSnapshot{FileName: in.FilePath}
	for _, xs := range in.Slides {
		slide := SlideSnapshot{Number: xs.Number}
		for _, el := range xs.Texts {
			var snap ShapeSnapshot
			if err := json.Unmarshal([]byte(el.Properties), &snap); err != nil {
				return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput,
					"failed to parse text element properties",
					fmt.Sprintf("slide %d shape %d", xs.Number, el.ShapeIndex), err)
			}
			if snap.Alignment != nil {
				if _, err := ParseAlignment(string(*snap.Alignment)); err != nil {
					return nil, err
				}
			}
			slide.Entries = append(slide.Entries, ShapeEntry{
				ShapeIndex: el.ShapeIndex, Kind: KindText, Shape: &snap,
			})
		}
		for _, el := range xs.Tables {
			var snap TableSnapshot
			if err := json.Unmarshal([]byte(el.Properties), &snap); err != nil {
				return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput,
					"failed to parse table element properties",
					fmt.Sprintf("slide %d shape %d", xs.Number, el.ShapeIndex), err)
			}
			if err := validateTable(&snap, xs.Number, el.ShapeIndex); err != nil {
				return nil, err
			}
			slide.Entries = append(slide.Entries, ShapeEntry{
				ShapeIndex: el.ShapeIndex, Kind: KindTable, Table: &snap,
			})
		}
		sort.Slice(slide.Entries, func(i, j int) bool {
			return slide.Entries[i].ShapeIndex < slide.Entries[j].ShapeIndex
		})
		doc.Slides = append(doc.Slides, slide)
	}
	doc.sortSlides()
	return doc, nil
}

func validateTable(snap *TableSnapshot, slide, shapeIndex int) error {
	if len(snap.Cells) != snap.Rows {
		return types.NewAppErrorWithDetails(types.ErrInvalidInput,
			"table snapshot row count mismatch",
			fmt.Sprintf("slide %d shape %d: %d rows declared, %d present", slide, shapeIndex, snap.Rows, len(snap.Cells)), nil)
	}
	for i, row := range snap.Cells {
		if len(row) != snap.Cols {
			return types.NewAppErrorWithDetails(types.ErrInvalidInput,
				"table snapshot column count mismatch",
				fmt.Sprintf("slide %d shape %d row %d: %d cols declared, %d present", slide, shapeIndex, i, snap.Cols, len(row)), nil)
		}
		for j := range row {
			if row[j].Alignment != nil {
				if _, err := ParseAlignment(string(*row[j].Alignment)); err != nil {
					return err
				}
			}
			if row[j].VerticalAnchor != nil {
				if _, err := ParseVerticalAnchor(string(*row[j].VerticalAnchor)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
