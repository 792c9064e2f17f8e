package model

// VideoSummary is the structured result of an AI summarize pass. Raw always
// holds the untouched model output; the section fields are best-effort parses
// of it and may be empty when the model ignored the requested structure.
type VideoSummary struct {
	ExecutiveSummary string
	KeyPoints        []string
	DetailedSummary  string
	Timestamps       []string
	Takeaways        []string
	Raw              string
	ModelUsed        string
	TokensUsed       int
}
