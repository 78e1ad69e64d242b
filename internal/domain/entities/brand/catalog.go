package brand

import "strings"

// UnknownID identifies the sentinel record returned when no brand matches.
const UnknownID = "unknown"

// catalog holds the recognized brands in fixed order. Resolution walks this
// slice, so earlier entries win ties.
var catalog = []Record{
	{
		ID:                  "nike",
		Name:                "Nike",
		Industry:            "Sportswear & Athletic Equipment",
		Logo:                "✔️",
		Slogan:              "Just Do It",
		SustainabilityScore: 7.2,
		SentimentScore:      8.1,
		AuthenticityTips:    "Check for the embroidered swoosh quality, authentic labels with correct fonts, and purchase from authorized retailers.",
		Description:         "Global leader in athletic footwear, apparel, and equipment. Known for innovation in sports technology and iconic marketing campaigns.",
		Founded:             "1964",
		Headquarters:        "Beaverton, Oregon, USA",
		MarketCap:           "$196 billion",
		StockSymbol:         "NKE",
		Competitors:         []string{"Adidas", "Puma", "Under Armour", "New Balance"},
		Website:             "nike.com",
		Stores: []Store{
			{Name: "Nike Store Downtown", Distance: "1.2 miles", Rating: 4.5},
			{Name: "Foot Locker", Distance: "0.8 miles", Rating: 4.2},
			{Name: "Dick's Sporting Goods", Distance: "2.1 miles", Rating: 4.3},
		},
		SimilarLogos: []string{"Adidas (three stripes)", "Puma (leaping cat)", "Reebok (vector)"},
		BrandColors:  []string{"#FF6B35", "#000000", "#FFFFFF"},
		Keywords:     []string{"nike", "swoosh", "just do it", "jordan", "air max"},
	},
	{
		ID:                  "apple",
		Name:                "Apple",
		Industry:            "Technology & Consumer Electronics",
		Logo:                "🍎",
		Slogan:              "Think Different",
		SustainabilityScore: 8.5,
		SentimentScore:      8.9,
		AuthenticityTips:    "Verify serial numbers on Apple's website, check build quality and materials, buy from Apple Store or authorized resellers.",
		Description:         "Revolutionary technology company creating innovative consumer electronics, software, and services that define modern digital life.",
		Founded:             "1976",
		Headquarters:        "Cupertino, California, USA",
		MarketCap:           "$3 trillion",
		StockSymbol:         "AAPL",
		Competitors:         []string{"Samsung", "Google", "Microsoft", "Huawei"},
		Website:             "apple.com",
		Stores: []Store{
			{Name: "Apple Store Fifth Avenue", Distance: "0.5 miles", Rating: 4.8},
			{Name: "Best Buy", Distance: "1.5 miles", Rating: 4.1},
			{Name: "Target Electronics", Distance: "1.0 miles", Rating: 3.9},
		},
		SimilarLogos: []string{"Samsung (oval)", "Android (robot)", "Microsoft (squares)"},
		BrandColors:  []string{"#007AFF", "#000000", "#F5F5F7"},
		Keywords:     []string{"apple", "iphone", "mac", "think different", "ipad", "macbook"},
	},
}

// unknown is the sentinel returned for queries that match nothing.
var unknown = Record{
	ID:                  UnknownID,
	Name:                "Unknown Brand",
	Industry:            "Unknown",
	Logo:                "❓",
	Slogan:              "Brand not recognized",
	SustainabilityScore: 0.0,
	SentimentScore:      0.0,
	AuthenticityTips:    "Unable to provide authenticity tips for unrecognized brands.",
	Description:         "This brand is not in our database. Try scanning a clearer image or search for a different brand.",
	Competitors:         []string{},
	Stores:              []Store{},
	SimilarLogos:        []string{},
	Keywords:            []string{},
}

// All returns the recognized brands in catalog order, excluding the sentinel.
func All() []Record {
	out := make([]Record, len(catalog))
	copy(out, catalog)
	return out
}

// Unknown returns the sentinel record.
func Unknown() Record {
	return unknown
}

// Lookup finds a record by id. The sentinel id resolves like any other so
// that persisted snapshots and favorites referencing it stay readable.
func Lookup(id string) (Record, bool) {
	if id == UnknownID {
		return unknown, true
	}
	for _, r := range catalog {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// IsKnownID reports whether id belongs to the catalog or is the sentinel.
func IsKnownID(id string) bool {
	_, ok := Lookup(id)
	return ok
}

// Resolve matches a free-text query against the catalog. Name containment is
// checked first in either direction ("Nike" inside "I love Nike shoes" as
// well as "Ni" inside "Nike"), then keyword containment. Matching is
// case-insensitive and deterministic; an empty query resolves to the
// sentinel.
func Resolve(query string) Record {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return unknown
	}
	for _, r := range catalog {
		name := strings.ToLower(r.Name)
		if strings.Contains(q, name) || strings.Contains(name, q) {
			return r
		}
	}
	for _, r := range catalog {
		for _, kw := range r.Keywords {
			if strings.Contains(q, kw) {
				return r
			}
		}
	}
	return unknown
}
