package document

import (
	"fmt"
	"os"
	"time"

	"github.com/fumiama/go-docx"

	"telegram-yt-summarizer/internal/domain/model"
	"telegram-yt-summarizer/internal/domain/ports/adapter"
)

func writeDOCX(in *adapter.RenderInput, outPath string) error {
	doc := docx.New().WithDefaultTheme()

	title := doc.AddParagraph()
	title.AddText(documentTitle(in)).Size("32").Bold()
	title.Justification("center")

	if info := in.Info; info != nil {
		docxHeading(doc, "Video Information")
		docxLine(doc, fmt.Sprintf("Title: %s", info.Title))
		docxLine(doc, fmt.Sprintf("Uploader: %s", info.Uploader))
		docxLine(doc, fmt.Sprintf("Duration: %s", formatClock(info.DurationSeconds)))
		if info.UploadDate != "" {
			docxLine(doc, fmt.Sprintf("Upload Date: %s", info.UploadDate))
		}
		if info.ViewCount > 0 {
			docxLine(doc, fmt.Sprintf("Views: %d", info.ViewCount))
		}
	}

	if in.Operation == model.OpSummarize && in.Summary != nil {
		writeDOCXSummary(doc, in.Summary)
	} else if in.Transcript != nil {
		header := "Transcript"
		if kind := transcriptKind(in.Transcript); kind != "" {
			header = fmt.Sprintf("Transcript (%s, %s)", in.Transcript.LanguageCode, kind)
		}
		docxHeading(doc, header)
		for _, line := range transcriptLines(in.Transcript) {
			docxLine(doc, line)
		}
	}

	footer := doc.AddParagraph()
	footer.AddText("Generated on " + time.Now().Format("2006-01-02 15:04:05")).Size("16").Color("808080")

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create docx: %w", err)
	}
	defer f.Close()
	if _, err := doc.WriteTo(f); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

func writeDOCXSummary(doc *docx.Docx, s *model.VideoSummary) {
	if s.ExecutiveSummary != "" {
		docxHeading(doc, "Executive Summary")
		docxLine(doc, s.ExecutiveSummary)
	}
	if len(s.KeyPoints) > 0 {
		docxHeading(doc, "Key Points")
		for _, p := range s.KeyPoints {
			docxLine(doc, "• "+p)
		}
	}
	if s.DetailedSummary != "" {
		docxHeading(doc, "Detailed Summary")
		docxLine(doc, s.DetailedSummary)
	}
	if len(s.Timestamps) > 0 {
		docxHeading(doc, "Important Timestamps")
		for _, t := range s.Timestamps {
			docxLine(doc, "• "+t)
		}
	}
	if len(s.Takeaways) > 0 {
		docxHeading(doc, "Key Takeaways")
		for _, t := range s.Takeaways {
			docxLine(doc, "• "+t)
		}
	}
	if s.ModelUsed != "" {
		docxHeading(doc, "Technical Information")
		docxLine(doc, fmt.Sprintf("AI Model: %s, Tokens Used: %d", s.ModelUsed, s.TokensUsed))
	}
}

func docxHeading(doc *docx.Docx, text string) {
	p := doc.AddParagraph()
	p.AddText(text).Size("28").Bold()
}

func docxLine(doc *docx.Docx, text string) {
	doc.AddParagraph().AddText(text)
}
