package document

import (
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"telegram-yt-summarizer/internal/domain/model"
	"telegram-yt-summarizer/internal/domain/ports/adapter"
)

func writePDF(in *adapter.RenderInput, outPath string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// Core fonts are latin-1; the translator maps what it can and replaces
	// the rest.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.MultiCell(0, 8, tr(documentTitle(in)), "", "C", false)
	pdf.Ln(4)

	heading := func(text string) {
		pdf.SetFont("Arial", "B", 13)
		pdf.CellFormat(0, 8, tr(text), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
	}
	line := func(text string) {
		pdf.MultiCell(0, 5.5, tr(text), "", "L", false)
	}

	if info := in.Info; info != nil {
		heading("Video Information")
		line(fmt.Sprintf("Title: %s", info.Title))
		line(fmt.Sprintf("Uploader: %s", info.Uploader))
		line(fmt.Sprintf("Duration: %s", formatClock(info.DurationSeconds)))
		if info.UploadDate != "" {
			line(fmt.Sprintf("Upload Date: %s", info.UploadDate))
		}
		if info.ViewCount > 0 {
			line(fmt.Sprintf("Views: %d", info.ViewCount))
		}
		pdf.Ln(3)
	}

	if in.Operation == model.OpSummarize && in.Summary != nil {
		writePDFSummary(pdf, heading, line, in.Summary)
	} else if in.Transcript != nil {
		header := "Transcript"
		if kind := transcriptKind(in.Transcript); kind != "" {
			header = fmt.Sprintf("Transcript (%s, %s)", in.Transcript.LanguageCode, kind)
		}
		heading(header)
		for _, l := range transcriptLines(in.Transcript) {
			line(l)
		}
	}

	pdf.Ln(5)
	pdf.SetFont("Arial", "I", 9)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 5, tr("Generated on "+time.Now().Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")

	return pdf.OutputFileAndClose(outPath)
}

func writePDFSummary(pdf *fpdf.Fpdf, heading func(string), line func(string), s *model.VideoSummary) {
	if s.ExecutiveSummary != "" {
		heading("Executive Summary")
		line(s.ExecutiveSummary)
		pdf.Ln(2)
	}
	if len(s.KeyPoints) > 0 {
		heading("Key Points")
		for _, p := range s.KeyPoints {
			line("- " + p)
		}
		pdf.Ln(2)
	}
	if s.DetailedSummary != "" {
		heading("Detailed Summary")
		line(s.DetailedSummary)
		pdf.Ln(2)
	}
	if len(s.Timestamps) > 0 {
		heading("Important Timestamps")
		for _, t := range s.Timestamps {
			line("- " + t)
		}
		pdf.Ln(2)
	}
	if len(s.Takeaways) > 0 {
		heading("Key Takeaways")
		for _, t := range s.Takeaways {
			line("- " + t)
		}
		pdf.Ln(2)
	}
	if s.ModelUsed != "" {
		heading("Technical Information")
		line(fmt.Sprintf("AI Model: %s, Tokens Used: %d", s.ModelUsed, s.TokensUsed))
	}
}
