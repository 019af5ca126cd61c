package types

import "time"

// PressRelease is a single scraped government press release.
type PressRelease struct {
	Country     string    `json:"country"`
	Title       string    `json:"maintitle"`
	URL         string    `json:"pub_url"`
	PublishDate string    `json:"publish_date"`
	DocNumber   string    `json:"fwzh,omitempty"`
	Content     string    `json:"content,omitempty"`
	ScrapedAt   time.Time `json:"scraped_at,omitempty"`
}

// Analysis is the analyzer's verdict on a single release.
type Analysis struct {
	Headline   string   `json:"headline"`
	Summary    string   `json:"summary"`
	Categories []string `json:"categories"`
	Relevance  int      `json:"relevance"` // 1..5 likert score
}
