package ppt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	gopresentation "github.com/VantageDataChat/GoPPT"

	"github.com/tristan-mcinnis/ppt-translator/internal/logger"
	"github.com/tristan-mcinnis/ppt-translator/internal/types"
)

// Translator turns source-language text into target-language text. An
// implementation must return usable text even on failure, falling back to
// the input.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) string
}

// ExtractOptions controls a document extraction pass.
type ExtractOptions struct {
	// Translator, when non-nil, replaces each captured text with its
	// translation. A nil Translator captures source text verbatim.
	Translator Translator
	SourceLang string
	TargetLang string

	// MaxWorkers bounds how many slides are processed at once.
	MaxWorkers int

	// CheckpointDir, when non-empty, receives an XML file with every slide
	// completed so far each time a slide finishes, so a long run can be
	// inspected or salvaged midway. Label distinguishes the pass in the
	// file name.
	CheckpointDir string
	Label         string
}

// Extract walks every slide of an open presentation and captures each text
// shape and table into a document snapshot. Slides are processed
// concurrently; the returned snapshot is ordered by slide number regardless
// of completion order.
func Extract(ctx context.Context, pres *gopresentation.Presentation, fileName string, opts ExtractOptions) (*DocumentSnapshot, error) {
	workers := opts.MaxWorkers
	if workers < 1 {
		workers = 1
	}

	slides := pres.Slides()
	doc := &DocumentSnapshot{FileName: fileName, Slides: make([]SlideSnapshot, len(slides))}
	done := make([]bool, len(slides))
	errs := make([]error, len(slides))

	sem := make(chan struct{}, workers)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i, slide := range slides {
		wg.Add(1)
		go func(idx int, sl *gopresentation.Slide) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			number := idx + 1
			snap := extractSlide(ctx, sl, number, opts)

			var partial *DocumentSnapshot
			mu.Lock()
			doc.Slides[idx] = snap
			done[idx] = true
			if opts.CheckpointDir != "" {
				partial = partialSnapshot(fileName, doc.Slides, done)
			}
			mu.Unlock()

			if partial != nil {
				if err := writeCheckpoint(opts.CheckpointDir, opts.Label, number, partial); err != nil {
					errs[idx] = err
					return
				}
			}
			logger.Debug("slide processed",
				logger.String("file", fileName),
				logger.Int("slide", number),
				logger.Int("entries", len(snap.Entries)))
		}(i, slide)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	doc.sortSlides()
	return doc, nil
}

// extractSlide captures one slide. Every text-bearing shape and table gets an
// entry, empty ones included, so the snapshot mirrors the slide's shape
// inventory. Shape indices follow the slide's shape order so a later pass can
// address the same shapes.
func extractSlide(ctx context.Context, slide *gopresentation.Slide, number int, opts ExtractOptions) SlideSnapshot {
	snap := SlideSnapshot{Number: number}

	for shapeIndex, sh := range slide.GetShapes() {
		switch v := sh.(type) {
		case *gopresentation.TableShape:
			table := ExtractTable(v)
			if opts.Translator != nil {
				translateTable(ctx, table, opts)
			}
			snap.Entries = append(snap.Entries, ShapeEntry{
				ShapeIndex: shapeIndex,
				Kind:       KindTable,
				Table:      table,
			})
		case *gopresentation.RichTextShape, *gopresentation.PlaceholderShape, *gopresentation.AutoShape:
			shape := ExtractShape(v.(textShape))
			if opts.Translator != nil && shape.Text != "" {
				shape.Text = opts.Translator.Translate(ctx, shape.Text, opts.SourceLang, opts.TargetLang)
			}
			snap.Entries = append(snap.Entries, ShapeEntry{
				ShapeIndex: shapeIndex,
				Kind:       KindText,
				Shape:      shape,
			})
		}
	}
	return snap
}

// translateTable translates cell by cell so each cell keeps its own
// formatting.
func translateTable(ctx context.Context, table *TableSnapshot, opts ExtractOptions) {
	for r := range table.Cells {
		for c := range table.Cells[r] {
			cell := &table.Cells[r][c]
			if cell.Text == "" {
				continue
			}
			cell.Text = opts.Translator.Translate(ctx, cell.Text, opts.SourceLang, opts.TargetLang)
		}
	}
}

// partialSnapshot copies the slides completed so far, already in slide order
// because completion is tracked by index.
func partialSnapshot(fileName string, slides []SlideSnapshot, done []bool) *DocumentSnapshot {
	partial := &DocumentSnapshot{FileName: fileName}
	for i, ok := range done {
		if ok {
			partial.Slides = append(partial.Slides, slides[i])
		}
	}
	return partial
}

// writeCheckpoint persists every slide completed so far, so partial progress
// survives an interrupted run. The file is named after the slide whose
// completion triggered the write.
func writeCheckpoint(dir, label string, number int, partial *DocumentSnapshot) error {
	data, err := EncodeXML(partial)
	if err != nil {
		return types.NewAppError(types.ErrExtract,
			fmt.Sprintf("failed to encode checkpoint for slide %d", number), err)
	}
	path := filepath.Join(dir, fmt.Sprintf("slide_%d_%s.xml", number, label))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return types.NewAppError(types.ErrExtract,
			fmt.Sprintf("failed to write checkpoint for slide %d", number), err)
	}
	return nil
}

// CleanupCheckpoints removes the per-slide XML files a run left in dir.
func CleanupCheckpoints(dir string) {
	matches, err := filepath.Glob(filepath.Join(dir, "slide_*.xml"))
	if err != nil {
		return
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil {
			logger.Warn("failed to remove checkpoint", logger.String("path", path), logger.Err(err))
		}
	}
}
