package ppt

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gopresentation "github.com/VantageDataChat/GoPPT"
)

func processOptions() ProcessOptions {
	return ProcessOptions{
		Translator: markTranslator{},
		SourceLang: "zh",
		TargetLang: "en",
		MaxWorkers: 2,
		Apply:      DefaultApplyOptions(),
	}
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pptx")
	if err := buildDeck(t).Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	result, err := ProcessFile(context.Background(), path, processOptions())
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	if result.OriginalXML != filepath.Join(dir, "report_original.xml") {
		t.Errorf("OriginalXML = %q", result.OriginalXML)
	}
	if result.TranslatedXML != filepath.Join(dir, "report_translated.xml") {
		t.Errorf("TranslatedXML = %q", result.TranslatedXML)
	}
	if result.OutputPath != filepath.Join(dir, "report_translated.pptx") {
		t.Errorf("OutputPath = %q", result.OutputPath)
	}
	if result.Report == nil || !result.Report.OK() {
		t.Errorf("report = %+v", result.Report)
	}

	origData, err := os.ReadFile(result.OriginalXML)
	if err != nil {
		t.Fatalf("original XML missing: %v", err)
	}
	orig, err := DecodeXML(origData)
	if err != nil {
		t.Fatalf("original XML does not parse: %v", err)
	}
	if got := orig.Slides[0].Entries[0].Shape.Text; got != "年度报告" {
		t.Errorf("original pass title = %q, want untranslated", got)
	}

	transData, err := os.ReadFile(result.TranslatedXML)
	if err != nil {
		t.Fatalf("translated XML missing: %v", err)
	}
	trans, err := DecodeXML(transData)
	if err != nil {
		t.Fatalf("translated XML does not parse: %v", err)
	}
	if got := trans.Slides[0].Entries[0].Shape.Text; got != "[en] 年度报告" {
		t.Errorf("translated pass title = %q", got)
	}

	out, err := gopresentation.Open(result.OutputPath)
	if err != nil {
		t.Fatalf("output deck does not open: %v", err)
	}
	defer out.Close()
	rebuilt, err := Extract(context.Background(), out, "x", ExtractOptions{MaxWorkers: 1})
	if err != nil {
		t.Fatalf("Extract of output failed: %v", err)
	}
	if got := rebuilt.Slides[1].Entries[0].Shape.Text; got != "[en] 谢谢大家" {
		t.Errorf("output slide 2 = %q", got)
	}

	// Per-slide checkpoints are removed after a successful run.
	matches, _ := filepath.Glob(filepath.Join(dir, "slide_*.xml"))
	if len(matches) != 0 {
		t.Errorf("checkpoints left behind: %v", matches)
	}
}

func TestProcessFileKeepIntermediate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pptx")
	if err := buildDeck(t).Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	opts := processOptions()
	opts.KeepIntermediate = true
	if _, err := ProcessFile(context.Background(), path, opts); err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "slide_*.xml"))
	if len(matches) == 0 {
		t.Error("expected checkpoints to be kept")
	}
	for _, m := range matches {
		base := filepath.Base(m)
		if !strings.HasSuffix(base, "_original.xml") && !strings.HasSuffix(base, "_translated.xml") {
			t.Errorf("unexpected checkpoint name %s", base)
		}
	}
}

func TestProcessFileMissingInput(t *testing.T) {
	_, err := ProcessFile(context.Background(), filepath.Join(t.TempDir(), "absent.pptx"), processOptions())
	if err == nil {
		t.Fatal("expected error for missing input")
	}
}

func TestAssembleFromXMLHandEdited(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pptx")
	if err := buildDeck(t).Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	result, err := ProcessFile(context.Background(), path, processOptions())
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	// A reviewer corrects the machine translation in the XML, then the deck
	// is rebuilt from the edited document.
	data, err := os.ReadFile(result.TranslatedXML)
	if err != nil {
		t.Fatal(err)
	}
	edited := strings.Replace(string(data), "[en] 年度报告", "Annual Report", 1)
	if err := os.WriteFile(result.TranslatedXML, []byte(edited), 0644); err != nil {
		t.Fatal(err)
	}

	outPath := filepath.Join(dir, "report_reviewed.pptx")
	report, err := AssembleFromXML(path, result.TranslatedXML, outPath, DefaultApplyOptions())
	if err != nil {
		t.Fatalf("AssembleFromXML failed: %v", err)
	}
	if !report.OK() {
		t.Errorf("unexpected issues: %v", report.Issues)
	}

	out, err := gopresentation.Open(outPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer out.Close()
	rebuilt, err := Extract(context.Background(), out, "x", ExtractOptions{MaxWorkers: 1})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if got := rebuilt.Slides[0].Entries[0].Shape.Text; got != "Annual Report" {
		t.Errorf("reviewed title = %q", got)
	}
}
