package ppt

import (
	"fmt"

	gopresentation "github.com/VantageDataChat/GoPPT"

	"github.com/tristan-mcinnis/ppt-translator/internal/logger"
	"github.com/tristan-mcinnis/ppt-translator/internal/types"
)

// Assemble builds a translated copy of the presentation at originalPath by
// reopening it and overwriting each captured shape with its snapshot. Shapes
// the snapshot does not mention keep their original content; snapshot
// entries with no matching live shape are skipped and reported. Only opening
// and saving the container are fatal.
func Assemble(originalPath string, doc *DocumentSnapshot, outputPath string, opts ApplyOptions) (*ApplyReport, error) {
	pres, err := gopresentation.Open(originalPath)
	if err != nil {
		return nil, types.NewAppError(types.ErrAssemble,
			fmt.Sprintf("failed to open presentation: %s", originalPath), err)
	}
	defer pres.Close()

	report := &ApplyReport{FileName: doc.FileName}
	slides := pres.Slides()

	for i := range doc.Slides {
		snap := &doc.Slides[i]
		if snap.Number < 1 || snap.Number > len(slides) {
			report.Add(snap.Number, -1, []ApplyIssue{{Row: -1, Col: -1,
				Reason: fmt.Sprintf("no such slide (presentation has %d)", len(slides))}})
			continue
		}
		applySlide(slides[snap.Number-1], snap, opts, report)
	}

	if err := pres.Save(outputPath); err != nil {
		return nil, types.NewAppError(types.ErrAssemble,
			fmt.Sprintf("failed to save presentation: %s", outputPath), err)
	}

	if !report.OK() {
		for _, issue := range report.Issues {
			logger.Warn("partial apply", logger.String("file", doc.FileName), logger.String("issue", issue.String()))
		}
	}
	return report, nil
}

func applySlide(slide *gopresentation.Slide, snap *SlideSnapshot, opts ApplyOptions, report *ApplyReport) {
	shapes := slide.GetShapes()

	for _, entry := range snap.Entries {
		if entry.ShapeIndex < 0 || entry.ShapeIndex >= len(shapes) {
			report.Add(snap.Number, entry.ShapeIndex, []ApplyIssue{{Row: -1, Col: -1,
				Reason: fmt.Sprintf("no such shape (slide has %d)", len(shapes))}})
			continue
		}
		sh := shapes[entry.ShapeIndex]

		switch entry.Kind {
		case KindTable:
			table, ok := sh.(*gopresentation.TableShape)
			if !ok {
				report.Add(snap.Number, entry.ShapeIndex, []ApplyIssue{{Row: -1, Col: -1,
					Reason: "snapshot is a table but live shape is not"}})
				continue
			}
			report.Add(snap.Number, entry.ShapeIndex, ApplyTable(table, entry.Table, opts))
		case KindText:
			if _, ok := sh.(*gopresentation.TableShape); ok {
				report.Add(snap.Number, entry.ShapeIndex, []ApplyIssue{{Row: -1, Col: -1,
					Reason: "snapshot is text but live shape is a table"}})
				continue
			}
			report.Add(snap.Number, entry.ShapeIndex, ApplyShape(sh, entry.Shape, opts))
		}
	}
}
