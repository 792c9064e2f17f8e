package model

// VideoInfo is the metadata half of an extraction.
type VideoInfo struct {
	ID              string
	Title           string
	Uploader        string
	DurationSeconds int
	Description     string
	UploadDate      string
	ViewCount       int64
}

// TranscriptSegment is one timed caption line. Start and Duration are seconds.
type TranscriptSegment struct {
	Text     string
	Start    float64
	Duration float64
}

type Transcript struct {
	Segments      []TranscriptSegment
	LanguageCode  string
	AutoGenerated bool
	// Corrected is set by the AI correction pass. When the corrected output
	// cannot be aligned back to the source segments it stays false and
	// Segments hold the originals.
	Corrected bool
}

// TotalDuration sums segment durations in seconds.
func (t *Transcript) TotalDuration() float64 {
	var sum float64
	for _, s := range t.Segments {
		sum += s.Duration
	}
	return sum
}
