package youtube

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"telegram-yt-summarizer/internal/domain/model"
)

// YouTube serves caption tracks as timedtext XML. Start and duration are
// millisecond attributes; a paragraph's text may be split over nested <s>
// elements.
type xmlTranscript struct {
	XMLName xml.Name  `xml:"timedtext"`
	Body    []xmlPara `xml:"body>p"`
}

type xmlPara struct {
	Start    int64        `xml:"t,attr"`
	Duration int64        `xml:"d,attr"`
	Text     string       `xml:",chardata"`
	Segments []xmlSegment `xml:"s"`
}

type xmlSegment struct {
	Text string `xml:",chardata"`
}

func fetchCaptionTrack(ctx context.Context, httpClient *http.Client, baseURL string) ([]model.TranscriptSegment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build caption request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch caption track: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("caption track returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read caption track: %w", err)
	}

	return parseTimedText(body)
}

func parseTimedText(data []byte) ([]model.TranscriptSegment, error) {
	var doc xmlTranscript
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse timedtext: %w", err)
	}

	segments := make([]model.TranscriptSegment, 0, len(doc.Body))
	for _, p := range doc.Body {
		text := p.Text
		for _, s := range p.Segments {
			text += s.Text
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		segments = append(segments, model.TranscriptSegment{
			Text:     text,
			Start:    float64(p.Start) / 1000,
			Duration: float64(p.Duration) / 1000,
		})
	}
	return segments, nil
}
