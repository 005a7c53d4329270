package ppt

import (
	"fmt"
	"math"
	"strings"

	gopresentation "github.com/VantageDataChat/GoPPT"
)

// ApplyOptions is the reapplication policy. Translated text, especially
// Chinese-to-English, tends to need less horizontal space per character at a
// given size, so font sizes are scaled down by a fixed ratio rather than
// measured. The font family is forced to a fallback suited to the target
// script.
type ApplyOptions struct {
	FontScale      float64 // ratio applied to text-shape font sizes
	TableFontScale float64 // ratio applied to table-cell font sizes
	FallbackFont   string  // family forced onto every rewritten run
}

// DefaultApplyOptions returns the documented default policy.
func DefaultApplyOptions() ApplyOptions {
	return ApplyOptions{FontScale: 0.75, TableFontScale: 0.8, FallbackFont: "Arial"}
}

// ApplyIssue is one recoverable failure encountered while reapplying a
// snapshot. Row and Col are -1 for non-table shapes.
type ApplyIssue struct {
	Slide      int
	ShapeIndex int
	Row        int
	Col        int
	Reason     string
}

func (i ApplyIssue) String() string {
	if i.Row >= 0 {
		return fmt.Sprintf("slide %d shape %d cell [%d,%d]: %s", i.Slide, i.ShapeIndex, i.Row, i.Col, i.Reason)
	}
	return fmt.Sprintf("slide %d shape %d: %s", i.Slide, i.ShapeIndex, i.Reason)
}

// ApplyReport aggregates per-operation results for one document. A non-empty
// report means some shapes were only partially applied; the document itself
// is still built.
type ApplyReport struct {
	FileName string
	Issues   []ApplyIssue
}

// Add records issues, filling in slide and shape coordinates.
func (r *ApplyReport) Add(slide, shapeIndex int, issues []ApplyIssue) {
	for _, issue := range issues {
		issue.Slide = slide
		issue.ShapeIndex = shapeIndex
		r.Issues = append(r.Issues, issue)
	}
}

// OK reports whether every property applied cleanly.
func (r *ApplyReport) OK() bool { return len(r.Issues) == 0 }

// textShape is the subset of the container API shared by shapes that carry
// paragraphs of rich text.
type textShape interface {
	gopresentation.Shape
	GetParagraphs() []*gopresentation.Paragraph
}

// geometryShape is satisfied by every container shape through BaseShape.
type geometryShape interface {
	SetSize(w, h int64) *gopresentation.BaseShape
	SetPosition(x, y int64) *gopresentation.BaseShape
}

// ============================================================
// Extraction
// ============================================================

// ExtractShape reads the serializable state of a text shape. Properties the
// shape does not expose are left absent; the first paragraph's first run
// stands in for the shape's font attributes.
func ExtractShape(sh textShape) *ShapeSnapshot {
	snap := &ShapeSnapshot{
		Text:   shapeText(sh),
		Width:  sh.GetWidth(),
		Height: sh.GetHeight(),
		Left:   sh.GetOffsetX(),
		Top:    sh.GetOffsetY(),
	}

	paragraphs := sh.GetParagraphs()
	if len(paragraphs) == 0 {
		return snap
	}
	para := paragraphs[0]

	if run := firstRun(para); run != nil && run.GetFont() != nil {
		font := run.GetFont()
		if font.Size > 0 {
			size := font.Size
			snap.FontSize = &size
		}
		if font.Name != "" {
			name := font.Name
			snap.FontName = &name
		}
		bold, italic := font.Bold, font.Italic
		snap.Bold = &bold
		snap.Italic = &italic
		if rgb, ok := colorToRGB(font.Color); ok {
			snap.FontColor = &rgb
		}
	}

	if a := para.GetAlignment(); a != nil {
		if al, ok := alignmentFromContainer(a.Horizontal); ok {
			snap.Alignment = &al
		}
	}
	if v := para.GetLineSpacing(); v > 0 {
		snap.LineSpacing = &v
	}
	if v := para.GetSpaceBefore(); v > 0 {
		snap.SpaceBefore = &v
	}
	if v := para.GetSpaceAfter(); v > 0 {
		snap.SpaceAfter = &v
	}
	return snap
}

// ExtractTable reads the serializable state of a table, cell by cell, in
// row-major order. The returned snapshot satisfies the row/column count
// invariant by construction.
func ExtractTable(table *gopresentation.TableShape) *TableSnapshot {
	rows, cols := table.GetNumRows(), table.GetNumCols()
	snap := &TableSnapshot{Rows: rows, Cols: cols, Cells: make([][]CellSnapshot, rows)}
	for r := 0; r < rows; r++ {
		snap.Cells[r] = make([]CellSnapshot, cols)
		for c := 0; c < cols; c++ {
			snap.Cells[r][c] = extractCell(table.GetCell(r, c))
		}
	}
	return snap
}

func extractCell(cell *gopresentation.TableCell) CellSnapshot {
	snap := CellSnapshot{Text: paragraphsText(cell.GetParagraphs())}

	paragraphs := cell.GetParagraphs()
	if len(paragraphs) == 0 {
		return snap
	}
	para := paragraphs[0]

	if run := firstRun(para); run != nil && run.GetFont() != nil {
		font := run.GetFont()
		if font.Size > 0 {
			size := font.Size
			snap.FontSize = &size
		}
		if font.Name != "" {
			name := font.Name
			snap.FontName = &name
		}
		bold, italic := font.Bold, font.Italic
		snap.Bold = &bold
		snap.Italic = &italic
		if rgb, ok := colorToRGB(font.Color); ok {
			snap.FontColor = &rgb
		}
	}

	if a := para.GetAlignment(); a != nil {
		if al, ok := alignmentFromContainer(a.Horizontal); ok {
			snap.Alignment = &al
		}
		snap.MarginLeft = a.MarginLeft
		snap.MarginRight = a.MarginRight
		snap.MarginTop = a.MarginTop
		snap.MarginBottom = a.MarginBottom
		if anchor, ok := anchorFromContainer(a.Vertical); ok {
			snap.VerticalAnchor = &anchor
		}
	}
	return snap
}

// ============================================================
// Reapplication
// ============================================================

// ApplyShape overwrites a live shape with a snapshot: geometry, text content
// as a single run, and the captured font and paragraph attributes. Individual
// property failures are recorded and skipped; they never abort the remaining
// properties. The shape boundary is never crossed by a panic.
func ApplyShape(sh gopresentation.Shape, snap *ShapeSnapshot, opts ApplyOptions) (issues []ApplyIssue) {
	defer func() {
		if rec := recover(); rec != nil {
			issues = append(issues, ApplyIssue{Row: -1, Col: -1,
				Reason: fmt.Sprintf("apply aborted: %v", rec)})
		}
	}()

	if g, ok := sh.(geometryShape); ok {
		g.SetSize(snap.Width, snap.Height)
		g.SetPosition(snap.Left, snap.Top)
	} else {
		issues = append(issues, ApplyIssue{Row: -1, Col: -1, Reason: "shape does not expose geometry"})
	}

	ts, ok := sh.(textShape)
	if !ok {
		issues = append(issues, ApplyIssue{Row: -1, Col: -1, Reason: "shape does not carry text"})
		return issues
	}

	run, para := rewriteText(ts, snap.Text)
	if run == nil {
		// Plain autoshapes hold text directly; run-level attributes have
		// nowhere to go and are dropped silently, matching extraction.
		if _, plain := ts.(*gopresentation.AutoShape); !plain {
			issues = append(issues, ApplyIssue{Row: -1, Col: -1, Reason: "shape has no writable paragraph"})
		}
		return issues
	}

	issues = append(issues, applyFont(run, snap.FontSize, snap.Bold, snap.Italic,
		snap.FontColor, opts.FontScale, opts.FallbackFont)...)

	if snap.Alignment != nil {
		if h, ok := alignmentToContainer(*snap.Alignment); ok {
			a := para.GetAlignment()
			if a == nil {
				a = gopresentation.NewAlignment()
				para.SetAlignment(a)
			}
			a.SetHorizontal(h)
		} else {
			issues = append(issues, ApplyIssue{Row: -1, Col: -1,
				Reason: fmt.Sprintf("unmapped alignment %q", *snap.Alignment)})
		}
	}
	if snap.LineSpacing != nil {
		para.SetLineSpacing(*snap.LineSpacing)
	}
	if snap.SpaceBefore != nil {
		para.SetSpaceBefore(*snap.SpaceBefore)
	}
	if snap.SpaceAfter != nil {
		para.SetSpaceAfter(*snap.SpaceAfter)
	}
	return issues
}

// ApplyTable overwrites a live table with a snapshot, walking row and column
// indices in lockstep with the snapshot cells. A cell whose indices fall
// outside the snapshot is reported and skipped; the rest of the table is
// still applied.
func ApplyTable(table *gopresentation.TableShape, snap *TableSnapshot, opts ApplyOptions) (issues []ApplyIssue) {
	defer func() {
		if rec := recover(); rec != nil {
			issues = append(issues, ApplyIssue{Row: -1, Col: -1,
				Reason: fmt.Sprintf("apply aborted: %v", rec)})
		}
	}()

	for r := 0; r < table.GetNumRows(); r++ {
		for c := 0; c < table.GetNumCols(); c++ {
			if r >= len(snap.Cells) || c >= len(snap.Cells[r]) {
				issues = append(issues, ApplyIssue{Row: r, Col: c,
					Reason: fmt.Sprintf("no snapshot cell for live cell (table snapshot is %dx%d)", snap.Rows, snap.Cols)})
				continue
			}
			issues = append(issues, applyCell(table.GetCell(r, c), &snap.Cells[r][c], r, c, opts)...)
		}
	}
	return issues
}

func applyCell(cell *gopresentation.TableCell, snap *CellSnapshot, row, col int, opts ApplyOptions) []ApplyIssue {
	var issues []ApplyIssue

	paragraphs := cell.GetParagraphs()
	if len(paragraphs) == 0 {
		return []ApplyIssue{{Row: row, Col: col, Reason: "cell has no paragraph"}}
	}
	para := paragraphs[0]
	for _, p := range paragraphs {
		clearRuns(p)
	}
	run := firstRun(para)
	if run != nil {
		run.SetText(snap.Text)
	} else {
		run = para.CreateTextRun(snap.Text)
	}

	for _, issue := range applyFont(run, snap.FontSize, snap.Bold, snap.Italic,
		snap.FontColor, opts.TableFontScale, opts.FallbackFont) {
		issue.Row, issue.Col = row, col
		issues = append(issues, issue)
	}

	a := para.GetAlignment()
	if a == nil {
		a = gopresentation.NewAlignment()
		para.SetAlignment(a)
	}
	a.MarginLeft = snap.MarginLeft
	a.MarginRight = snap.MarginRight
	a.MarginTop = snap.MarginTop
	a.MarginBottom = snap.MarginBottom
	if snap.Alignment != nil {
		if h, ok := alignmentToContainer(*snap.Alignment); ok {
			a.SetHorizontal(h)
		} else {
			issues = append(issues, ApplyIssue{Row: row, Col: col,
				Reason: fmt.Sprintf("unmapped alignment %q", *snap.Alignment)})
		}
	}
	if snap.VerticalAnchor != nil {
		if v, ok := anchorToContainer(*snap.VerticalAnchor); ok {
			a.SetVertical(v)
		} else {
			issues = append(issues, ApplyIssue{Row: row, Col: col,
				Reason: fmt.Sprintf("unmapped vertical anchor %q", *snap.VerticalAnchor)})
		}
	}
	return issues
}

// applyFont rewrites a run's font per the snapshot and policy. The size is
// scaled by ratio, the family is forced to fallback.
func applyFont(run *gopresentation.TextRun, size *int, bold, italic *bool, color *string, ratio float64, fallback string) []ApplyIssue {
	var issues []ApplyIssue

	font := run.GetFont()
	if font == nil {
		font = gopresentation.NewFont()
		run.SetFont(font)
	}
	if size != nil {
		scaled := int(math.Round(float64(*size) * ratio))
		if scaled < 1 {
			scaled = 1
		}
		font.Size = scaled
	}
	font.Name = fallback
	if bold != nil {
		font.Bold = *bold
	}
	if italic != nil {
		font.Italic = *italic
	}
	if color != nil {
		if isHexRGB(*color) {
			font.Color = gopresentation.NewColor(*color)
		} else {
			issues = append(issues, ApplyIssue{Row: -1, Col: -1,
				Reason: fmt.Sprintf("invalid font color %q", *color)})
		}
	}
	return issues
}

// rewriteText clears every existing run and writes text as a single run in
// the first paragraph. Returns the run and its paragraph, or nil when the
// shape exposes no writable paragraph.
func rewriteText(sh textShape, text string) (*gopresentation.TextRun, *gopresentation.Paragraph) {
	if auto, ok := sh.(*gopresentation.AutoShape); ok {
		auto.SetText(text)
	}
	paragraphs := sh.GetParagraphs()
	if len(paragraphs) == 0 {
		if rich, ok := sh.(interface {
			GetActiveParagraph() *gopresentation.Paragraph
		}); ok {
			para := rich.GetActiveParagraph()
			return para.CreateTextRun(text), para
		}
		return nil, nil
	}
	for _, p := range paragraphs {
		clearRuns(p)
	}
	para := paragraphs[0]
	if run := firstRun(para); run != nil {
		run.SetText(text)
		return run, para
	}
	return para.CreateTextRun(text), para
}

// ============================================================
// Helpers
// ============================================================

func clearRuns(p *gopresentation.Paragraph) {
	for _, el := range p.GetElements() {
		if run, ok := el.(*gopresentation.TextRun); ok {
			run.SetText("")
		}
	}
}

func firstRun(p *gopresentation.Paragraph) *gopresentation.TextRun {
	for _, el := range p.GetElements() {
		if run, ok := el.(*gopresentation.TextRun); ok {
			return run
		}
	}
	return nil
}

// shapeText returns the shape's visible text, paragraphs separated by
// newlines and the whole trimmed.
func shapeText(sh textShape) string {
	text := paragraphsText(sh.GetParagraphs())
	if text == "" {
		if auto, ok := sh.(*gopresentation.AutoShape); ok {
			text = strings.TrimSpace(auto.GetText())
		}
	}
	return text
}

func paragraphsText(paragraphs []*gopresentation.Paragraph) string {
	var lines []string
	for _, para := range paragraphs {
		var sb strings.Builder
		for _, el := range para.GetElements() {
			switch v := el.(type) {
			case *gopresentation.TextRun:
				sb.WriteString(v.GetText())
			case *gopresentation.BreakElement:
				sb.WriteString("\n")
			}
		}
		lines = append(lines, sb.String())
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func colorToRGB(c gopresentation.Color) (string, bool) {
	if len(c.ARGB) != 8 {
		return "", false
	}
	return c.ARGB[2:], true
}

func isHexRGB(s string) bool {
	if len(s) != 6 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

func alignmentFromContainer(h gopresentation.HorizontalAlignment) (Alignment, bool) {
	switch h {
	case gopresentation.HorizontalLeft:
		return AlignLeft, true
	case gopresentation.HorizontalCenter:
		return AlignCenter, true
	case gopresentation.HorizontalRight:
		return AlignRight, true
	case gopresentation.HorizontalJustify:
		return AlignJustify, true
	}
	return "", false
}

func alignmentToContainer(a Alignment) (gopresentation.HorizontalAlignment, bool) {
	switch a {
	case AlignLeft:
		return gopresentation.HorizontalLeft, true
	case AlignCenter:
		return gopresentation.HorizontalCenter, true
	case AlignRight:
		return gopresentation.HorizontalRight, true
	case AlignJustify:
		return gopresentation.HorizontalJustify, true
	}
	return "", false
}

func anchorFromContainer(v gopresentation.VerticalAlignment) (VerticalAnchor, bool) {
	switch v {
	case gopresentation.VerticalTop:
		return AnchorTop, true
	case gopresentation.VerticalMiddle:
		return AnchorMiddle, true
	case gopresentation.VerticalBottom:
		return AnchorBottom, true
	}
	return "", false
}

func anchorToContainer(a VerticalAnchor) (gopresentation.VerticalAlignment, bool) {
	switch a {
	case AnchorTop:
		return gopresentation.VerticalTop, true
	case AnchorMiddle:
		return gopresentation.VerticalMiddle, true
	case AnchorBottom:
		return gopresentation.VerticalBottom, true
	}
	return "", false
}
