package document

import (
	"fmt"
	"os"
	"strings"
	"time"

	"telegram-yt-summarizer/internal/domain/model"
	"telegram-yt-summarizer/internal/domain/ports/adapter"
)

func writeTXT(in *adapter.RenderInput, outPath string) error {
	var sb strings.Builder

	title := documentTitle(in)
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("=", len([]rune(title))) + "\n\n")

	if info := in.Info; info != nil {
		sb.WriteString("VIDEO INFORMATION\n")
		sb.WriteString(strings.Repeat("-", 17) + "\n")
		fmt.Fprintf(&sb, "Title: %s\n", info.Title)
		fmt.Fprintf(&sb, "Uploader: %s\n", info.Uploader)
		fmt.Fprintf(&sb, "Duration: %s\n", formatClock(info.DurationSeconds))
		if info.UploadDate != "" {
			fmt.Fprintf(&sb, "Upload Date: %s\n", info.UploadDate)
		}
		if info.ViewCount > 0 {
			fmt.Fprintf(&sb, "Views: %d\n", info.ViewCount)
		}
		sb.WriteString("\n")
	}

	if in.Operation == model.OpSummarize && in.Summary != nil {
		writeTXTSummary(&sb, in.Summary)
	} else if in.Transcript != nil {
		writeTXTTranscript(&sb, in.Transcript)
	}

	fmt.Fprintf(&sb, "\nGenerated on %s\n", time.Now().Format("2006-01-02 15:04:05"))
	return os.WriteFile(outPath, []byte(sb.String()), 0o644)
}

func writeTXTSummary(sb *strings.Builder, s *model.VideoSummary) {
	section := func(name string) {
		sb.WriteString(name + "\n")
		sb.WriteString(strings.Repeat("-", len([]rune(name))) + "\n")
	}

	if s.ExecutiveSummary != "" {
		section("EXECUTIVE SUMMARY")
		sb.WriteString(s.ExecutiveSummary + "\n\n")
	}
	if len(s.KeyPoints) > 0 {
		section("KEY POINTS")
		for _, p := range s.KeyPoints {
			sb.WriteString("• " + p + "\n")
		}
		sb.WriteString("\n")
	}
	if s.DetailedSummary != "" {
		section("DETAILED SUMMARY")
		sb.WriteString(s.DetailedSummary + "\n\n")
	}
	if len(s.Timestamps) > 0 {
		section("IMPORTANT TIMESTAMPS")
		for _, t := range s.Timestamps {
			sb.WriteString("• " + t + "\n")
		}
		sb.WriteString("\n")
	}
	if len(s.Takeaways) > 0 {
		section("KEY TAKEAWAYS")
		for _, t := range s.Takeaways {
			sb.WriteString("• " + t + "\n")
		}
		sb.WriteString("\n")
	}
	if s.ModelUsed != "" {
		section("TECHNICAL INFORMATION")
		fmt.Fprintf(sb, "AI Model: %s\n", s.ModelUsed)
		fmt.Fprintf(sb, "Tokens Used: %d\n", s.TokensUsed)
		sb.WriteString("\n")
	}
}

func writeTXTTranscript(sb *strings.Builder, t *model.Transcript) {
	header := "TRANSCRIPT"
	if kind := transcriptKind(t); kind != "" {
		header = fmt.Sprintf("TRANSCRIPT (%s, %s)", t.LanguageCode, kind)
	}
	sb.WriteString(header + "\n")
	sb.WriteString(strings.Repeat("-", len([]rune(header))) + "\n")
	for _, line := range transcriptLines(t) {
		sb.WriteString(line + "\n")
	}
}
