package ai

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/luminor-ai/luminor-go/internal/domain/entities/brand"
)

// Analysis is the normalized reply of one image scan.
type Analysis struct {
	BrandDetected       bool
	BrandName           string
	Confidence          float64
	LogoElements        []string
	Colors              []string
	Description         string
	Category            string
	Slogan              string
	SentimentScore      float64
	SustainabilityScore float64
	Founded             string
	Headquarters        string
	MarketCap           string
	StockSymbol         string
	Website             string
	Competitors         []string
	Stores              []brand.Store
	Offers              []string
	SimilarLogos        []string
	Keywords            []string
	AuthenticityTips    string
}

// ParseAnalysis validates and normalizes a raw model reply. Markdown fences
// are stripped before decoding. brand_detected, brand_name and confidence
// must be present and confidence must be numeric; every other field degrades
// to its zero value.
func ParseAnalysis(raw string) (*Analysis, error) {
	cleaned := stripFences(raw)

	var fields map[string]any
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, fmt.Errorf("model reply is not valid JSON: %w", err)
	}

	for _, required := range []string{"brand_detected", "brand_name", "confidence"} {
		if _, ok := fields[required]; !ok {
			return nil, fmt.Errorf("model reply missing required field %q", required)
		}
	}

	confidence, ok := toFloat(fields["confidence"])
	if !ok {
		return nil, fmt.Errorf("model reply has non-numeric confidence %v", fields["confidence"])
	}

	detected, _ := fields["brand_detected"].(bool)
	sentiment, _ := toFloat(fields["sentiment_score"])
	sustainability, _ := toFloat(fields["sustainability_score"])

	return &Analysis{
		BrandDetected:       detected,
		BrandName:           toString(fields["brand_name"]),
		Confidence:          confidence,
		LogoElements:        toStringSlice(fields["logo_elements"]),
		Colors:              toStringSlice(fields["colors"]),
		Description:         toString(fields["description"]),
		Category:            toString(fields["category"]),
		Slogan:              toString(fields["slogan"]),
		SentimentScore:      sentiment,
		SustainabilityScore: sustainability,
		Founded:             toString(fields["founded"]),
		Headquarters:        toString(fields["headquarters"]),
		MarketCap:           toString(fields["market_cap"]),
		StockSymbol:         toString(fields["stock_symbol"]),
		Website:             toString(fields["website"]),
		Competitors:         toStringSlice(fields["competitors"]),
		Stores:              toStores(fields["stores"]),
		Offers:              toStringSlice(fields["offers"]),
		SimilarLogos:        toStringSlice(fields["similar_logos"]),
		Keywords:            toStringSlice(fields["keywords"]),
		AuthenticityTips:    toString(fields["authenticity_tips"]),
	}, nil
}

// stripFences removes Markdown code fences wrapping the JSON payload.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.ReplaceAll(s, "```json", "")
		s = strings.ReplaceAll(s, "```", "")
	} else if strings.HasPrefix(s, "```") {
		s = strings.ReplaceAll(s, "```", "")
	}
	return strings.TrimSpace(s)
}

// toString accepts strings and bare numbers. Models regularly send fields
// like founded as a number even when the prompt asks for a string.
func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func toStringSlice(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := toString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// toStores normalizes the stores list. Object entries keep their values with
// defaults, bare strings become a store with no distance or rating, and
// entries that are neither are dropped.
func toStores(v any) []brand.Store {
	items, _ := v.([]any)
	stores := make([]brand.Store, 0, len(items))
	for _, item := range items {
		switch s := item.(type) {
		case map[string]any:
			if _, ok := s["name"]; !ok {
				continue
			}
			store := brand.Store{Name: "Unknown Store", Distance: "N/A"}
			if name := toString(s["name"]); name != "" {
				store.Name = name
			}
			if distance := toString(s["distance"]); distance != "" {
				store.Distance = distance
			}
			if rating, ok := toFloat(s["rating"]); ok {
				store.Rating = rating
			}
			stores = append(stores, store)
		case string:
			stores = append(stores, brand.Store{Name: s, Distance: "N/A"})
		}
	}
	return stores
}
