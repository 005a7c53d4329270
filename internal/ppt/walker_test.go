package ppt

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gopresentation "github.com/VantageDataChat/GoPPT"
)

// markTranslator tags text with the target language so tests can tell
// translated text from original text.
type markTranslator struct{}

func (markTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) string {
	return "[" + targetLang + "] " + text
}

// buildDeck creates a two-slide presentation with a title, a body, an empty
// shape and a table.
func buildDeck(t *testing.T) *gopresentation.Presentation {
	t.Helper()
	p := gopresentation.New()

	slide1 := p.GetActiveSlide()
	title := slide1.CreateRichTextShape()
	title.SetPosition(gopresentation.Inch(1), gopresentation.Inch(0.5))
	title.SetSize(gopresentation.Inch(8), gopresentation.Inch(1))
	title.CreateTextRun("年度报告").GetFont().SetSize(40).SetBold(true)

	empty := slide1.CreateRichTextShape()
	empty.SetSize(gopresentation.Inch(1), gopresentation.Inch(1))

	table := slide1.CreateTableShape(2, 2)
	table.GetCell(0, 0).SetText("指标")
	table.GetCell(0, 1).SetText("数值")
	table.GetCell(1, 0).SetText("增长")
	table.GetCell(1, 1).SetText("百分之十")

	slide2 := p.CreateSlide()
	body := slide2.CreateRichTextShape()
	body.SetSize(gopresentation.Inch(6), gopresentation.Inch(4))
	body.CreateTextRun("谢谢大家")

	return p
}

func TestExtractCapturesAllTextShapes(t *testing.T) {
	pres := buildDeck(t)

	doc, err := Extract(context.Background(), pres, "deck.pptx", ExtractOptions{MaxWorkers: 2})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if doc.FileName != "deck.pptx" {
		t.Errorf("FileName = %q", doc.FileName)
	}
	if len(doc.Slides) != 2 {
		t.Fatalf("extracted %d slides, want 2", len(doc.Slides))
	}
	if doc.Slides[0].Number != 1 || doc.Slides[1].Number != 2 {
		t.Errorf("slide numbers = %d, %d", doc.Slides[0].Number, doc.Slides[1].Number)
	}

	// Every text shape gets an entry, the empty one included, so the
	// snapshot mirrors the slide's shape inventory.
	slide1 := doc.Slides[0]
	if len(slide1.Entries) != 3 {
		t.Fatalf("slide 1 has %d entries, want 3: %+v", len(slide1.Entries), slide1.Entries)
	}
	if slide1.Entries[0].Kind != KindText || slide1.Entries[0].Shape.Text != "年度报告" {
		t.Errorf("entry 0 = %+v", slide1.Entries[0])
	}
	if slide1.Entries[1].Kind != KindText || slide1.Entries[1].Shape.Text != "" {
		t.Errorf("entry 1 = %+v", slide1.Entries[1])
	}
	if slide1.Entries[2].Kind != KindTable {
		t.Fatalf("entry 2 kind = %v, want table", slide1.Entries[2].Kind)
	}
	if got := slide1.Entries[2].Table.Cells[1][1].Text; got != "百分之十" {
		t.Errorf("cell [1,1] = %q", got)
	}
	if slide1.Entries[2].ShapeIndex != 2 {
		t.Errorf("table shape index = %d, want 2", slide1.Entries[2].ShapeIndex)
	}

	if len(doc.Slides[1].Entries) != 1 || doc.Slides[1].Entries[0].Shape.Text != "谢谢大家" {
		t.Errorf("slide 2 entries = %+v", doc.Slides[1].Entries)
	}
}

func TestExtractIncludesPlaceholders(t *testing.T) {
	p := gopresentation.New()
	slide := p.GetActiveSlide()

	title := slide.CreatePlaceholderShape(gopresentation.PlaceholderTitle)
	title.SetText("季度总结")
	title.SetPosition(gopresentation.Inch(0.5), gopresentation.Inch(0.5))
	title.SetSize(gopresentation.Inch(8), gopresentation.Inch(1))

	body := slide.CreatePlaceholderShape(gopresentation.PlaceholderBody)
	body.SetText("营收稳步增长")
	body.SetPlaceholderIndex(1)

	doc, err := Extract(context.Background(), p, "deck.pptx", ExtractOptions{
		Translator: markTranslator{},
		SourceLang: "zh",
		TargetLang: "en",
		MaxWorkers: 1,
	})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(doc.Slides) != 1 || len(doc.Slides[0].Entries) != 2 {
		t.Fatalf("entries = %+v", doc.Slides)
	}
	if got := doc.Slides[0].Entries[0].Shape.Text; got != "[en] 季度总结" {
		t.Errorf("title placeholder = %q", got)
	}
	if got := doc.Slides[0].Entries[1].Shape.Text; got != "[en] 营收稳步增长" {
		t.Errorf("body placeholder = %q", got)
	}
}

func TestExtractWithTranslator(t *testing.T) {
	pres := buildDeck(t)

	doc, err := Extract(context.Background(), pres, "deck.pptx", ExtractOptions{
		Translator: markTranslator{},
		SourceLang: "zh",
		TargetLang: "en",
		MaxWorkers: 2,
	})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if got := doc.Slides[0].Entries[0].Shape.Text; got != "[en] 年度报告" {
		t.Errorf("title = %q, want translated", got)
	}
	// Blank text is never sent to the translator.
	if got := doc.Slides[0].Entries[1].Shape.Text; got != "" {
		t.Errorf("empty shape = %q, want untouched", got)
	}
	for r, row := range doc.Slides[0].Entries[2].Table.Cells {
		for c, cell := range row {
			if !strings.HasPrefix(cell.Text, "[en] ") {
				t.Errorf("cell [%d,%d] = %q, want translated", r, c, cell.Text)
			}
		}
	}
}

func TestExtractWritesCheckpoints(t *testing.T) {
	pres := buildDeck(t)
	dir := t.TempDir()

	_, err := Extract(context.Background(), pres, "deck.pptx", ExtractOptions{
		MaxWorkers:    1,
		CheckpointDir: dir,
		Label:         "original",
	})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	// Each checkpoint holds every slide completed so far, so the one
	// written last is a usable snapshot of the whole run.
	for i, name := range []string{"slide_1_original.xml", "slide_2_original.xml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("checkpoint %s missing: %v", name, err)
		}
		partial, err := DecodeXML(data)
		if err != nil {
			t.Fatalf("checkpoint %s does not parse: %v", name, err)
		}
		if len(partial.Slides) != i+1 {
			t.Errorf("checkpoint %s has %d slides, want %d", name, len(partial.Slides), i+1)
		}
	}

	CleanupCheckpoints(dir)
	matches, _ := filepath.Glob(filepath.Join(dir, "slide_*.xml"))
	if len(matches) != 0 {
		t.Errorf("checkpoints left after cleanup: %v", matches)
	}
}

func TestExtractConcurrencyKeepsSlideOrder(t *testing.T) {
	p := gopresentation.New()
	p.GetActiveSlide().CreateRichTextShape().CreateTextRun("slide one")
	for i := 2; i <= 12; i++ {
		p.CreateSlide().CreateRichTextShape().CreateTextRun("slide " + strings.Repeat("x", i))
	}

	doc, err := Extract(context.Background(), p, "deck.pptx", ExtractOptions{MaxWorkers: 8})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(doc.Slides) != 12 {
		t.Fatalf("extracted %d slides, want 12", len(doc.Slides))
	}
	for i, slide := range doc.Slides {
		if slide.Number != i+1 {
			t.Errorf("slide at position %d has number %d", i, slide.Number)
		}
	}
}
