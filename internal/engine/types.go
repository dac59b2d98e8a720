package engine

// Platform identifies the site a stream was scraped from.
type Platform string

const (
	Twitch Platform = "Twitch"
	Kick   Platform = "Kick"
)

// StreamRecord is one scraped live-stream listing. Build it with NewStreamRecord
// so ViewerCount always agrees with ViewersText.
type StreamRecord struct {
	Platform    Platform `json:"platform"`
	Title       string   `json:"title"`
	ViewersText string   `json:"viewers"`      // raw, e.g. "12.3K viewers"
	ViewerCount int64    `json:"viewer_count"` // normalized from ViewersText
}

// NewStreamRecord builds a record, deriving the viewer count from the raw text.
func NewStreamRecord(platform Platform, title, viewersText string) StreamRecord {
	return StreamRecord{
		Platform:    platform,
		Title:       title,
		ViewersText: viewersText,
		ViewerCount: ParseViewerCount(viewersText),
	}
}

// --- Tool server types ---

type StreamRankingInput struct {
	Platform string `json:"platform,omitempty" jsonschema:"Platform to scrape: all (default), twitch, kick"`
	Match    string `json:"match,omitempty" jsonschema:"Case-insensitive title substring (default: rust kingdom)"`
}

type RankedStream struct {
	Rank        int    `json:"rank"`
	Platform    string `json:"platform"`
	Title       string `json:"title"`
	Viewers     string `json:"viewers"`
	ViewerCount int64  `json:"viewer_count"`
}

type StreamRankingOutput struct {
	Platform string         `json:"platform"`
	Match    string         `json:"match"`
	Streams  []RankedStream `json:"streams"`
	Failures int            `json:"failures"`
}
