package ai

import (
	"regexp"
	"strconv"
	"strings"

	"telegram-yt-summarizer/internal/domain/model"
)

// Summary section headers the model is asked to emit, with the Russian
// variants it tends to use when summarizing in Russian.
var sectionHeaders = []struct {
	section  string
	keywords []string
}{
	{"executive", []string{"executive summary", "краткое содержание", "краткое изложение", "резюме", "основная мысль"}},
	{"keypoints", []string{"key points", "main points", "highlights", "ключевые моменты", "основные моменты", "ключевые пункты", "важные моменты"}},
	{"detailed", []string{"detailed summary", "подробное резюме", "подробное содержание", "детальное резюме", "подробное изложение"}},
	{"timestamps", []string{"timestamp", "временные метки", "метки времени", "временные отрезки"}},
	{"takeaways", []string{"takeaway", "action items", "conclusion", "выводы", "рекомендации", "итоги", "заключение"}},
}

func detectSection(line string) string {
	lower := strings.ToLower(line)
	for _, h := range sectionHeaders {
		for _, kw := range h.keywords {
			if strings.Contains(lower, kw) {
				return h.section
			}
		}
	}
	return ""
}

// parseSummaryResponse splits the model output into the structured sections.
// Raw always carries the full text; when no section headers are found the
// whole text lands in ExecutiveSummary.
func parseSummaryResponse(text string) *model.VideoSummary {
	summary := &model.VideoSummary{Raw: text}

	current := ""
	var textBuf []string
	var listBuf []string

	flush := func() {
		switch current {
		case "executive":
			summary.ExecutiveSummary = strings.Join(textBuf, "\n")
		case "detailed":
			summary.DetailedSummary = strings.Join(textBuf, "\n")
		case "keypoints":
			summary.KeyPoints = append(summary.KeyPoints, listBuf...)
		case "timestamps":
			summary.Timestamps = append(summary.Timestamps, listBuf...)
		case "takeaways":
			summary.Takeaways = append(summary.Takeaways, listBuf...)
		}
		textBuf = textBuf[:0]
		listBuf = listBuf[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if section := detectSection(line); section != "" {
			flush()
			current = section
			continue
		}
		// Markdown decoration around headers carries no content.
		if strings.HasPrefix(line, "#") {
			continue
		}
		cleaned := strings.TrimSpace(strings.TrimLeft(line, "•-* "))
		if cleaned == "" {
			continue
		}
		switch current {
		case "keypoints", "timestamps", "takeaways":
			listBuf = append(listBuf, cleaned)
		case "executive", "detailed":
			textBuf = append(textBuf, cleaned)
		default:
			// Text before any header reads as the opening summary.
			if summary.ExecutiveSummary == "" {
				summary.ExecutiveSummary = cleaned
			}
		}
	}
	flush()

	if summary.ExecutiveSummary == "" && summary.DetailedSummary == "" {
		summary.ExecutiveSummary = text
	}
	return summary
}

var segmentMarker = regexp.MustCompile(`\[(\d+)\]`)

// markSegments tags each segment with its index and groups segments into
// lines of at most five, breaking early at sentence-ending punctuation.
func markSegments(segments []model.TranscriptSegment) string {
	var lines []string
	var current []string
	for i, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		current = append(current, "["+strconv.Itoa(i)+"]"+text)
		if strings.HasSuffix(text, ".") || strings.HasSuffix(text, "!") || strings.HasSuffix(text, "?") || len(current) >= 5 {
			lines = append(lines, strings.Join(current, " "))
			current = current[:0]
		}
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	return strings.Join(lines, "\n")
}

// parseCorrectedResponse maps corrected lines back onto the original timings
// via the [n] markers. Each output line inherits the start and duration of
// the first marker it carries. Returns nil when nothing aligns.
func parseCorrectedResponse(corrected string, original []model.TranscriptSegment) []model.TranscriptSegment {
	var result []model.TranscriptSegment
	for _, line := range strings.Split(corrected, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		markers := segmentMarker.FindStringSubmatch(line)
		if markers == nil {
			continue
		}
		idx, err := strconv.Atoi(markers[1])
		if err != nil || idx < 0 || idx >= len(original) {
			continue
		}
		text := strings.TrimSpace(segmentMarker.ReplaceAllString(line, ""))
		if text == "" {
			continue
		}
		result = append(result, model.TranscriptSegment{
			Text:     text,
			Start:    original[idx].Start,
			Duration: original[idx].Duration,
		})
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
