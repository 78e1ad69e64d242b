package ai

// visionPrompt is the fixed instruction sent with every image. The reply
// contract is JSON only; ParseAnalysis tolerates the fences and loose typing
// models produce anyway.
const visionPrompt = `Analyze this image for brand logos and return ONLY a JSON response:
{
    "brand_detected": true/false,
    "brand_name": "exact brand name or null",
    "confidence": 0-100,
    "logo_elements": ["list of visual elements, e.g., shapes, symbols"],
    "colors": ["dominant colors in hex"],
    "description": "detailed description of the brand or logo",
    "category": "inferred industry (e.g., Fashion, Tech, Food)",
    "slogan": "brand slogan or null",
    "sentiment_score": 0-10,
    "sustainability_score": 0-10,
    "founded": "year founded or null",
    "headquarters": "location or null",
    "market_cap": "market cap or null",
    "stock_symbol": "ticker symbol or null",
    "website": "official website or null",
    "competitors": ["list of potential competitors"],
    "stores": [{"name": "store name", "distance": "distance in km", "rating": float}],
    "offers": ["current offers or promotions, if any are visible"],
    "similar_logos": ["brands with similar logos"],
    "keywords": ["relevant keywords for the brand or logo"],
    "authenticity_tips": "how to verify genuine products or null"
}
For known brands, provide precise details. For unknown brands, infer details from logo style, colors, and context. Estimate sentiment_score (0-10) based on logo aesthetics: modern, clean=8-10; cluttered, dated=3-6; generic=0-3. Estimate sustainability_score (0-10) based on colors (e.g., green=7-9) and inferred industry (e.g., eco-friendly=high). Include at least 3 competitors and 5 keywords for unknown brands. For stores, return a list of dictionaries with name, distance, and rating.`
