package transcript

// Segment is one timed caption line after cleanup.
type Segment struct {
	Text     string
	Start    float64 // seconds
	Duration float64 // seconds
}

// Transcript holds the flat text used by the pipeline and the timed
// segments, retained for timestamped formatting.
type Transcript struct {
	Text     string
	Segments []Segment
}

// captionTrack mirrors one entry of the captionTracks array embedded in the
// watch page player response.
type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" marks auto-generated tracks
}
