package backend

import (
	"encoding/json"
	"fmt"
)

// SearchCandidate is one ranked fuzzy-search match. Ordering by descending
// score is a backend contract; the client never re-sorts.
type SearchCandidate struct {
	ID       *int    `json:"id,omitempty"`
	Name     string  `json:"name"`
	ImageURL string  `json:"image_url,omitempty"`
	Score    float64 `json:"score"`
}

// Cocktail is one AI-generated cocktail recipe attached to a drink.
type Cocktail struct {
	Title          string `json:"cocktail_title"`
	Base           string `json:"cocktail_base"`
	Garnish        string `json:"cocktail_garnish"`
	Recipe         string `json:"cocktail_recipe"`
	ImageURL       string `json:"cocktail_image_url,omitempty"`
	YoutubeVideoID string `json:"youtube_video_id,omitempty"`
	YoutubeTitle   string `json:"youtube_video_title,omitempty"`
	YoutubeThumb   string `json:"youtube_thumbnail_url,omitempty"`
}

// GeneratedCocktail is the /cocktail/generate response: a cocktail plus an
// optional food pairing suggestion riding along.
type GeneratedCocktail struct {
	Cocktail
	FoodPairingName   string `json:"food_pairing_name,omitempty"`
	FoodPairingReason string `json:"food_pairing_reason,omitempty"`
}

// RandomCocktail is one row of the /cocktail/random listing.
type RandomCocktail struct {
	ID          int    `json:"cocktail_id"`
	Title       string `json:"cocktail_title"`
	ImageURL    string `json:"cocktail_image_url"`
	HomepageURL string `json:"cocktail_homepage_url"`
}

// SellingShop is one shop carrying a drink.
type SellingShop struct {
	ShopID  int    `json:"shop_id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Contact string `json:"contact"`
	URL     string `json:"url"`
	Price   int    `json:"price"`
}

// EncyclopediaImage is an illustration inside an encyclopedia section.
type EncyclopediaImage struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// EncyclopediaSection is one titled block of encyclopedia text.
type EncyclopediaSection struct {
	Title  string              `json:"title"`
	Text   string              `json:"text"`
	Images []EncyclopediaImage `json:"images,omitempty"`
}

// EncyclopediaSections tolerates the two shapes the backend emits for the
// encyclopedia field: a proper section list, or a bare description string
// (older search responses). A string decodes to an empty list.
type EncyclopediaSections []EncyclopediaSection

func (e *EncyclopediaSections) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		*e = nil
		return nil
	}
	var sections []EncyclopediaSection
	if err := json.Unmarshal(data, &sections); err != nil {
		return err
	}
	*e = sections
	return nil
}

// DrinkSpecs carries the labelled spec sheet; the backend keys these in Korean.
type DrinkSpecs struct {
	ABV         string `json:"알콜도수"`
	Volume      string `json:"용량"`
	Kind        string `json:"종류"`
	Ingredients string `json:"원재료"`
	Awards      string `json:"수상내역"`
}

// Brewery is the producing brewery block; every field may be absent.
type Brewery struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Homepage string `json:"homepage"`
	Contact  string `json:"contact"`
}

// DrinkDetail is the full denormalized record for one drink. Two historical
// field-naming conventions coexist on the wire (foods/pairing_food,
// intro/description); decoding normalizes both pairs into the canonical
// Intro and Foods fields so view code never needs fallbacks.
type DrinkDetail struct {
	ID           *int                 `json:"id"`
	Name         string               `json:"name"`
	Intro        string               `json:"intro"`
	ABV          string               `json:"abv,omitempty"`
	Volume       string               `json:"volume,omitempty"`
	Type         string               `json:"type,omitempty"`
	ImageURL     string               `json:"image_url,omitempty"`
	URL          string               `json:"url,omitempty"`
	Province     string               `json:"province,omitempty"`
	City         string               `json:"city,omitempty"`
	Tags         []string             `json:"tags,omitempty"`
	Specs        DrinkSpecs           `json:"detail"`
	Brewery      Brewery              `json:"brewery"`
	Foods        []string             `json:"foods,omitempty"`
	Cocktails    []Cocktail           `json:"cocktails,omitempty"`
	SellingShops []SellingShop        `json:"selling_shops,omitempty"`
	Encyclopedia EncyclopediaSections `json:"encyclopedia,omitempty"`
	Candidates   []SearchCandidate    `json:"candidates,omitempty"`
	Score        float64              `json:"score,omitempty"`
}

func (d *DrinkDetail) UnmarshalJSON(data []byte) error {
	type alias DrinkDetail
	aux := struct {
		*alias
		Description string   `json:"description"`
		PairingFood []string `json:"pairing_food"`
	}{alias: (*alias)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	// First non-empty of each legacy pair wins.
	if d.Intro == "" {
		d.Intro = aux.Description
	}
	if len(d.Foods) == 0 {
		d.Foods = aux.PairingFood
	}
	return nil
}

// SearchResponse is the decoded POST /search payload. Candidates is always
// populated: a bare single-object response (the backend's "single confident
// match" shortcut) is wrapped into a one-element list.
type SearchResponse struct {
	Best       *DrinkDetail
	Candidates []SearchCandidate
}

// Liquor is one entry of a regional liquor listing.
type Liquor struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Alcohol  string `json:"alcohol"`
	ImageURL string `json:"image_url"`
	Price    int    `json:"price"`
	Volume   string `json:"volume"`
}

// DrinkSummary is one row of the paginated /search/list browse endpoint.
type DrinkSummary struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	ImageURL     string        `json:"image_url"`
	Type         string        `json:"type"`
	Alcohol      string        `json:"alcohol"`
	Volume       string        `json:"volume"`
	Price        int           `json:"price"`
	Intro        string        `json:"intro"`
	PairingFoods []string      `json:"pairing_foods"`
	SellingShops []SellingShop `json:"selling_shops"`
}

// DrinkList is the /search/list page envelope.
type DrinkList struct {
	Drinks     []DrinkSummary `json:"drinks"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	Size       int            `json:"size"`
	TotalPages int            `json:"total_pages"`
}

// SimilarDrink is one related-drink suggestion.
type SimilarDrink struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	ImageURL string  `json:"image_url"`
	Score    float64 `json:"score"`
}

// SearchRank is one entry of the daily top-searches ranking.
type SearchRank struct {
	Query   string `json:"query"`
	Count   int    `json:"count"`
	DrinkID *int   `json:"drink_id,omitempty"`
}

// Product is one online shop offer for a drink.
type Product struct {
	Name     string `json:"name"`
	Price    int    `json:"price"`
	Shop     string `json:"shop"`
	URL      string `json:"url"`
	ImageURL string `json:"image_url"`
}

// HansangItem is one dish of an AI-composed traditional table pairing.
type HansangItem struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
	Reason   string `json:"reason"`
	LinkURL  string `json:"link_url,omitempty"`
}

// HansangRequest is the /hansang/recommend request body.
type HansangRequest struct {
	DrinkName        string `json:"drink_name"`
	Province         string `json:"province"`
	City             string `json:"city"`
	DrinkDescription string `json:"drink_description"`
}

// ChatDrink is one drink recommendation attached to a chatbot answer.
type ChatDrink struct {
	ID          int    `json:"id,omitempty"`
	Name        string `json:"name"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
	ABV         string `json:"abv"`
	Volume      string `json:"volume"`
}

// ChatAnswer is a chatbot reply.
type ChatAnswer struct {
	Answer string      `json:"answer"`
	Drinks []ChatDrink `json:"drinks,omitempty"`
}

// WeatherRecommendation pairs current conditions with liquor suggestions for
// one region. Replaced wholesale on every region/city change.
type WeatherRecommendation struct {
	City            string   `json:"city"`
	Temperature     float64  `json:"temperature"`
	Weather         string   `json:"weather"`
	Message         string   `json:"message"`
	Keyword         string   `json:"keyword"`
	Liquors         []Liquor `json:"liquors"`
	AvailableCities []string `json:"available_cities,omitempty"`
}

// OCRResult is the /ocr/analyze response: the raw recognized text plus the
// matched drink when the backend found one.
type OCRResult struct {
	Text         string       `json:"text"`
	SearchResult *DrinkDetail `json:"search_result,omitempty"`
}

// APIError is a non-2xx backend response. Detail carries the backend's
// `detail` field when present, otherwise the raw body.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: status=%d detail=%s", e.StatusCode, e.Detail)
}
