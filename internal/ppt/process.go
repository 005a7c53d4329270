package ppt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gopresentation "github.com/VantageDataChat/GoPPT"

	"github.com/tristan-mcinnis/ppt-translator/internal/logger"
	"github.com/tristan-mcinnis/ppt-translator/internal/types"
)

// ProcessOptions configures one end-to-end file run.
type ProcessOptions struct {
	Translator Translator
	SourceLang string
	TargetLang string
	MaxWorkers int
	Apply      ApplyOptions

	// KeepIntermediate retains the per-slide checkpoint files after a
	// successful run.
	KeepIntermediate bool
}

// ProcessResult names the artifacts a run produced.
type ProcessResult struct {
	OriginalXML   string
	TranslatedXML string
	OutputPath    string
	Report        *ApplyReport
}

// ProcessFile runs the full pipeline on one presentation: an extraction pass
// capturing the original text, a second pass translating it, and an assembly
// pass writing <name>_translated.pptx next to the input. Both passes are
// persisted as XML documents so the translated one can be inspected or
// hand-corrected.
func ProcessFile(ctx context.Context, path string, opts ProcessOptions) (*ProcessResult, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, types.NewAppError(types.ErrFileNotFound,
			fmt.Sprintf("presentation not found: %s", path), err)
	}

	pres, err := gopresentation.Open(path)
	if err != nil {
		return nil, types.NewAppError(types.ErrExtract,
			fmt.Sprintf("failed to open presentation: %s", path), err)
	}
	defer pres.Close()

	dir := filepath.Dir(path)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	fileName := filepath.Base(path)
	result := &ProcessResult{
		OriginalXML:   filepath.Join(dir, stem+"_original.xml"),
		TranslatedXML: filepath.Join(dir, stem+"_translated.xml"),
		OutputPath:    filepath.Join(dir, stem+"_translated.pptx"),
	}

	logger.Info("extracting text", logger.String("file", fileName))
	original, err := Extract(ctx, pres, fileName, ExtractOptions{
		MaxWorkers:    opts.MaxWorkers,
		CheckpointDir: dir,
		Label:         "original",
	})
	if err != nil {
		return nil, err
	}
	if err := writeDocument(original, result.OriginalXML); err != nil {
		return nil, err
	}

	logger.Info("translating text",
		logger.String("file", fileName),
		logger.String("sourceLang", opts.SourceLang),
		logger.String("targetLang", opts.TargetLang))
	translated, err := Extract(ctx, pres, fileName, ExtractOptions{
		Translator:    opts.Translator,
		SourceLang:    opts.SourceLang,
		TargetLang:    opts.TargetLang,
		MaxWorkers:    opts.MaxWorkers,
		CheckpointDir: dir,
		Label:         "translated",
	})
	if err != nil {
		return nil, err
	}
	if err := writeDocument(translated, result.TranslatedXML); err != nil {
		return nil, err
	}

	logger.Info("assembling presentation", logger.String("output", result.OutputPath))
	report, err := Assemble(path, translated, result.OutputPath, opts.Apply)
	if err != nil {
		return nil, err
	}
	result.Report = report

	if !opts.KeepIntermediate {
		CleanupCheckpoints(dir)
	}
	return result, nil
}

// AssembleFromXML rebuilds a translated presentation from a previously
// written, possibly hand-edited, XML document.
func AssembleFromXML(originalPath, xmlPath, outputPath string, opts ApplyOptions) (*ApplyReport, error) {
	data, err := os.ReadFile(xmlPath)
	if err != nil {
		return nil, types.NewAppError(types.ErrFileNotFound,
			fmt.Sprintf("document not found: %s", xmlPath), err)
	}
	doc, err := DecodeXML(data)
	if err != nil {
		return nil, err
	}
	return Assemble(originalPath, doc, outputPath, opts)
}

func writeDocument(doc *DocumentSnapshot, path string) error {
	data, err := EncodeXML(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return types.NewAppError(types.ErrExtract,
			fmt.Sprintf("failed to write document: %s", path), err)
	}
	return nil
}
