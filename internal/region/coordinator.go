// Package region keeps the map selection, weather panel, and regional liquor
// list mutually consistent without feedback loops.
package region

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jumak-kr/jumakweb/internal/backend"
	"github.com/jumak-kr/jumakweb/internal/geo"
)

// ItemsPerPage is the client-side page size over the fetched list.
const ItemsPerPage = 5

// SortField selects the active list ordering.
type SortField string

const (
	SortNone    SortField = ""
	SortPrice   SortField = "price"
	SortAlcohol SortField = "alcohol"
	SortWeather SortField = "weather"
)

// SortOrder is ascending or descending.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// API is the backend surface the coordinator drives. Satisfied by
// backend.Client (and by the service layer's cached wrapper for weather).
type API interface {
	SearchRegion(ctx context.Context, rq backend.RegionQuery) ([]backend.Liquor, error)
	Products(ctx context.Context, drinkName string) ([]backend.Product, error)
	WeatherRecommend(ctx context.Context, admCd, city string) (*backend.WeatherRecommendation, error)
}

// Coordinator owns the canonical region selection state. City is only
// meaningful with a province; selecting a new province clears it unless an
// explicit city arrives with the selection.
type Coordinator struct {
	api API
	log zerolog.Logger

	province string
	city     string
	season   string

	sortField SortField
	sortOrder SortOrder

	liquors        []backend.Liquor
	selectedLiquor *backend.Liquor
	products       []backend.Product
	weather        *backend.WeatherRecommendation
	page           int

	// Last province/city the weather panel applied; guards against refetch
	// loops from bidirectional syncing.
	weatherProvince string
	weatherCity     string
}

// NewCoordinator builds a coordinator over the given backend surface.
func NewCoordinator(api API, log zerolog.Logger) *Coordinator {
	return &Coordinator{api: api, log: log, page: 1}
}

// SelectProvince applies a map click on a province. Re-selecting the current
// province is a no-op; a new one clears city, selected liquor, and product
// offers before refetching.
func (c *Coordinator) SelectProvince(ctx context.Context, name string) {
	if c.province == name {
		return
	}
	c.province = name
	c.city = ""
	c.selectedLiquor = nil
	c.products = nil
	c.fetchLiquors(ctx)
	c.syncWeather(ctx)
}

// SelectCity narrows the selection to a city inside the current province.
func (c *Coordinator) SelectCity(ctx context.Context, city string) {
	if c.province == "" || c.city == city {
		return
	}
	c.city = city
	c.fetchLiquors(ctx)
	c.syncWeather(ctx)
}

// SetSeason filters by season ("" means all seasons) without resetting city
// or the selected liquor.
func (c *Coordinator) SetSeason(ctx context.Context, season string) {
	c.season = season
	if c.province != "" {
		c.fetchLiquors(ctx)
	}
}

// ToggleSort cycles the ordering for a field: none -> asc -> desc -> none.
// Price and alcohol sorts are applied client-side over the fetched list;
// the weather sort is delegated to the backend, so toggling it refetches.
func (c *Coordinator) ToggleSort(ctx context.Context, field SortField) {
	wasWeather := c.sortField == SortWeather
	if c.sortField == field {
		switch c.sortOrder {
		case Asc:
			c.sortOrder = Desc
		default:
			c.sortField = SortNone
			c.sortOrder = Asc
		}
	} else {
		c.sortField = field
		c.sortOrder = Asc
	}
	c.page = 1

	nowWeather := c.sortField == SortWeather
	if (wasWeather || nowWeather) && c.province != "" {
		c.fetchLiquors(ctx)
	}
}

// SelectLiquor marks a list entry selected and loads its shop offers.
func (c *Coordinator) SelectLiquor(ctx context.Context, id int) {
	for i := range c.liquors {
		if c.liquors[i].ID == id {
			liq := c.liquors[i]
			c.selectedLiquor = &liq
			c.fetchProducts(ctx, liq.Name)
			return
		}
	}
}

// UseMyLocation resolves browser coordinates to the nearest province centroid
// and selects it. City stays unset; geolocation is province-granular.
func (c *Coordinator) UseMyLocation(ctx context.Context, lat, lon float64) geo.Province {
	p := geo.NearestProvince(lat, lon)
	c.SelectProvince(ctx, p.Name)
	return p
}

// ApplyWeatherSelection handles the weather panel driving the map: its
// selectors are fed by props, so this only acts when the incoming pair
// differs from the current selection.
func (c *Coordinator) ApplyWeatherSelection(ctx context.Context, provinceName, city string) {
	if c.province == provinceName && c.city == city {
		return
	}
	if c.province != provinceName {
		c.SelectProvince(ctx, provinceName)
	}
	if city != "" {
		c.SelectCity(ctx, city)
	}
}

// BackToOverview clears the whole selection.
func (c *Coordinator) BackToOverview() {
	c.province = ""
	c.city = ""
	c.liquors = nil
	c.selectedLiquor = nil
	c.products = nil
	c.page = 1
}

// Page moves to a 1-based page, clamped to the available range.
func (c *Coordinator) Page(n int) {
	if n < 1 {
		n = 1
	}
	if tp := c.TotalPages(); n > tp && tp > 0 {
		n = tp
	}
	c.page = n
}

// TotalPages reports the page count over the fetched list.
func (c *Coordinator) TotalPages() int {
	return (len(c.liquors) + ItemsPerPage - 1) / ItemsPerPage
}

// VisibleLiquors returns the current page after client-side sorting.
func (c *Coordinator) VisibleLiquors() []backend.Liquor {
	sorted := append([]backend.Liquor(nil), c.liquors...)
	switch c.sortField {
	case SortPrice:
		sort.SliceStable(sorted, func(i, j int) bool {
			if c.sortOrder == Asc {
				return sorted[i].Price < sorted[j].Price
			}
			return sorted[i].Price > sorted[j].Price
		})
	case SortAlcohol:
		sort.SliceStable(sorted, func(i, j int) bool {
			a, b := parseLeadingFloat(sorted[i].Alcohol), parseLeadingFloat(sorted[j].Alcohol)
			if c.sortOrder == Asc {
				return a < b
			}
			return a > b
		})
	}

	start := (c.page - 1) * ItemsPerPage
	if start >= len(sorted) {
		return nil
	}
	end := start + ItemsPerPage
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[start:end]
}

// Snapshot exposes the canonical state for rendering and tests.
type Snapshot struct {
	Province       string
	City           string
	Season         string
	SortField      SortField
	SortOrder      SortOrder
	Liquors        []backend.Liquor
	SelectedLiquor *backend.Liquor
	Products       []backend.Product
	Weather        *backend.WeatherRecommendation
	CurrentPage    int
}

// Snapshot returns the current state.
func (c *Coordinator) Snapshot() Snapshot {
	return Snapshot{
		Province:       c.province,
		City:           c.city,
		Season:         c.season,
		SortField:      c.sortField,
		SortOrder:      c.sortOrder,
		Liquors:        c.liquors,
		SelectedLiquor: c.selectedLiquor,
		Products:       c.products,
		Weather:        c.weather,
		CurrentPage:    c.page,
	}
}

func (c *Coordinator) fetchLiquors(ctx context.Context) {
	rq := backend.RegionQuery{
		Province: c.province,
		City:     c.city,
		Season:   c.season,
	}
	if c.sortField == SortWeather && c.weather != nil {
		rq.WeatherCondition = weatherCondition(c.weather)
		rq.WeatherSort = true
	}
	liquors, err := c.api.SearchRegion(ctx, rq)
	if err != nil {
		c.log.Error().Err(err).Str("province", c.province).Msg("regional liquor fetch failed")
		liquors = nil
	}
	c.liquors = liquors
	c.page = 1
}

func (c *Coordinator) fetchProducts(ctx context.Context, drinkName string) {
	products, err := c.api.Products(ctx, drinkName)
	if err != nil {
		c.log.Error().Err(err).Str("drink", drinkName).Msg("product fetch failed")
		products = nil
	}
	c.products = products
}

func (c *Coordinator) syncWeather(ctx context.Context) {
	if c.weatherProvince == c.province && c.weatherCity == c.city {
		return
	}
	p, ok := geo.ProvinceByName(c.province)
	if !ok {
		return
	}
	rec, err := c.api.WeatherRecommend(ctx, p.AdmCd, c.city)
	if err != nil {
		c.log.Error().Err(err).Str("adm_cd", p.AdmCd).Msg("weather fetch failed")
		return
	}
	c.weather = rec
	c.weatherProvince = c.province
	c.weatherCity = c.city
}

// weatherCondition maps the free-text Korean condition plus temperature onto
// the backend's weather_condition parameter.
func weatherCondition(rec *backend.WeatherRecommendation) string {
	switch {
	case strings.Contains(rec.Weather, "비"):
		return "rain"
	case strings.Contains(rec.Weather, "눈"):
		return "snow"
	case rec.Temperature < 5:
		return "cold"
	case rec.Temperature > 28:
		return "hot"
	default:
		return "clear"
	}
}

// parseLeadingFloat reads the numeric prefix of strings like "13%" or
// "6.5도"; non-numeric input sorts as zero.
func parseLeadingFloat(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	seenDot := false
	for end < len(s) {
		ch := s[end]
		if ch >= '0' && ch <= '9' {
			end++
			continue
		}
		if ch == '.' && !seenDot {
			seenDot = true
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0
	}
	return v
}
