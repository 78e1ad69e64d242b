// Package brand provides the static brand catalog and the resolver used to
// match free-text queries against it. Records are immutable; AI-derived
// profiles are synthesized into the same shape and live only inside scan
// history snapshots.
package brand

// Record is a descriptive brand profile. The JSON tags define the snapshot
// schema persisted inside scan history rows.
type Record struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	Industry            string        `json:"industry"`
	Logo                string        `json:"logo"`
	Slogan              string        `json:"slogan"`
	SustainabilityScore float64       `json:"sustainability_score"`
	SentimentScore      float64       `json:"sentiment_score"`
	AuthenticityTips    string        `json:"authenticity_tips"`
	Description         string        `json:"description"`
	Founded             string        `json:"founded,omitempty"`
	Headquarters        string        `json:"headquarters,omitempty"`
	MarketCap           string        `json:"market_cap,omitempty"`
	StockSymbol         string        `json:"stock_symbol,omitempty"`
	Competitors         []string      `json:"competitors"`
	Website             string        `json:"website,omitempty"`
	Stores              []Store       `json:"stores"`
	Offers              []string      `json:"offers,omitempty"`
	SimilarLogos        []string      `json:"similar_logos"`
	BrandColors         []string      `json:"brand_colors,omitempty"`
	Keywords            []string      `json:"keywords"`
	LogoElements        []string      `json:"logo_elements,omitempty"`
	ScanMetadata        *ScanMetadata `json:"scan_metadata,omitempty"`
}

// Store is one nearby retail location for a brand.
type Store struct {
	Name     string  `json:"name"`
	Distance string  `json:"distance"`
	Rating   float64 `json:"rating"`
}

// ScanMetadata is attached to snapshots when history is loaded.
type ScanMetadata struct {
	ScanType   string  `json:"scan_type"`
	Confidence float64 `json:"confidence"`
	ScannedAt  string  `json:"scanned_at"`
}

// IsUnknown reports whether the record is the sentinel for unrecognized brands.
func (r Record) IsUnknown() bool {
	return r.ID == UnknownID
}
