package region

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumak-kr/jumakweb/internal/backend"
)

type fakeAPI struct {
	regionCalls  []backend.RegionQuery
	weatherCalls [][2]string
	liquors      []backend.Liquor
	products     []backend.Product
	weather      *backend.WeatherRecommendation
}

func (f *fakeAPI) SearchRegion(ctx context.Context, rq backend.RegionQuery) ([]backend.Liquor, error) {
	f.regionCalls = append(f.regionCalls, rq)
	return f.liquors, nil
}

func (f *fakeAPI) Products(ctx context.Context, drinkName string) ([]backend.Product, error) {
	return f.products, nil
}

func (f *fakeAPI) WeatherRecommend(ctx context.Context, admCd, city string) (*backend.WeatherRecommendation, error) {
	f.weatherCalls = append(f.weatherCalls, [2]string{admCd, city})
	if f.weather != nil {
		return f.weather, nil
	}
	return &backend.WeatherRecommendation{City: city}, nil
}

func sampleLiquors() []backend.Liquor {
	return []backend.Liquor{
		{ID: 1, Name: "이화주", Alcohol: "6%", Price: 28000},
		{ID: 2, Name: "안동소주", Alcohol: "45%", Price: 35000},
		{ID: 3, Name: "복분자주", Alcohol: "15%", Price: 12000},
		{ID: 4, Name: "막걸리", Alcohol: "6.5%", Price: 3000},
		{ID: 5, Name: "이강주", Alcohol: "25%", Price: 25000},
		{ID: 6, Name: "법주", Alcohol: "13%", Price: 18000},
	}
}

func TestProvinceChangeResetsCityLiquorProducts(t *testing.T) {
	api := &fakeAPI{liquors: sampleLiquors(), products: []backend.Product{{Name: "이화주 500ml", Price: 28000}}}
	c := NewCoordinator(api, zerolog.Nop())
	ctx := context.Background()

	c.SelectProvince(ctx, "경기도")
	c.SelectCity(ctx, "수원시")
	c.SelectLiquor(ctx, 1)

	st := c.Snapshot()
	require.Equal(t, "수원시", st.City)
	require.NotNil(t, st.SelectedLiquor)
	require.NotEmpty(t, st.Products)

	c.SelectProvince(ctx, "강원도")
	st = c.Snapshot()
	assert.Equal(t, "강원도", st.Province)
	assert.Empty(t, st.City)
	assert.Nil(t, st.SelectedLiquor)
	assert.Empty(t, st.Products)
}

func TestReselectingSameProvinceIsNoop(t *testing.T) {
	api := &fakeAPI{liquors: sampleLiquors()}
	c := NewCoordinator(api, zerolog.Nop())
	ctx := context.Background()

	c.SelectProvince(ctx, "경기도")
	calls := len(api.regionCalls)
	c.SelectProvince(ctx, "경기도")
	assert.Equal(t, calls, len(api.regionCalls))
}

func TestSeasonChangeKeepsCityAndSelection(t *testing.T) {
	api := &fakeAPI{liquors: sampleLiquors()}
	c := NewCoordinator(api, zerolog.Nop())
	ctx := context.Background()

	c.SelectProvince(ctx, "전라남도")
	c.SelectCity(ctx, "목포시")
	c.SelectLiquor(ctx, 2)

	c.SetSeason(ctx, "겨울")
	st := c.Snapshot()
	assert.Equal(t, "목포시", st.City)
	assert.NotNil(t, st.SelectedLiquor)
	assert.Equal(t, "겨울", api.regionCalls[len(api.regionCalls)-1].Season)
}

func TestSortCycleNoneAscDescNone(t *testing.T) {
	api := &fakeAPI{liquors: sampleLiquors()}
	c := NewCoordinator(api, zerolog.Nop())
	ctx := context.Background()
	c.SelectProvince(ctx, "서울특별시")

	c.ToggleSort(ctx, SortPrice)
	st := c.Snapshot()
	assert.Equal(t, SortPrice, st.SortField)
	assert.Equal(t, Asc, st.SortOrder)

	c.ToggleSort(ctx, SortPrice)
	st = c.Snapshot()
	assert.Equal(t, SortPrice, st.SortField)
	assert.Equal(t, Desc, st.SortOrder)

	c.ToggleSort(ctx, SortPrice)
	st = c.Snapshot()
	assert.Equal(t, SortNone, st.SortField)
}

func TestClientSideSortingAndPagination(t *testing.T) {
	api := &fakeAPI{liquors: sampleLiquors()}
	c := NewCoordinator(api, zerolog.Nop())
	ctx := context.Background()
	c.SelectProvince(ctx, "서울특별시")

	// Price ascending: cheapest first, page of five.
	c.ToggleSort(ctx, SortPrice)
	page := c.VisibleLiquors()
	require.Len(t, page, 5)
	assert.Equal(t, "막걸리", page[0].Name)
	assert.Equal(t, 3000, page[0].Price)

	c.Page(2)
	page = c.VisibleLiquors()
	require.Len(t, page, 1)
	assert.Equal(t, "안동소주", page[0].Name)

	// Alcohol descending parses the numeric prefix of "45%", "6.5%"...
	c.ToggleSort(ctx, SortAlcohol)
	c.ToggleSort(ctx, SortAlcohol)
	st := c.Snapshot()
	assert.Equal(t, 1, st.CurrentPage, "sort change resets to page 1")
	page = c.VisibleLiquors()
	assert.Equal(t, "안동소주", page[0].Name)
	assert.Equal(t, "이강주", page[1].Name)
}

func TestWeatherSortDelegatesToBackend(t *testing.T) {
	api := &fakeAPI{
		liquors: sampleLiquors(),
		weather: &backend.WeatherRecommendation{City: "서울특별시", Temperature: 2, Weather: "맑음"},
	}
	c := NewCoordinator(api, zerolog.Nop())
	ctx := context.Background()
	c.SelectProvince(ctx, "서울특별시")

	c.ToggleSort(ctx, SortWeather)
	last := api.regionCalls[len(api.regionCalls)-1]
	assert.True(t, last.WeatherSort)
	assert.Equal(t, "cold", last.WeatherCondition, "2 degrees maps to cold")

	// Toggling past desc clears the weather sort and refetches without it.
	c.ToggleSort(ctx, SortWeather)
	c.ToggleSort(ctx, SortWeather)
	last = api.regionCalls[len(api.regionCalls)-1]
	assert.False(t, last.WeatherSort)
}

func TestWeatherSyncGuardAvoidsRefetchLoop(t *testing.T) {
	api := &fakeAPI{liquors: sampleLiquors()}
	c := NewCoordinator(api, zerolog.Nop())
	ctx := context.Background()

	c.SelectProvince(ctx, "서울특별시")
	require.Len(t, api.weatherCalls, 1)

	// The weather panel echoing the same selection back must not refetch.
	c.ApplyWeatherSelection(ctx, "서울특별시", "")
	assert.Len(t, api.weatherCalls, 1)

	c.ApplyWeatherSelection(ctx, "서울특별시", "종로구")
	assert.Len(t, api.weatherCalls, 2)
}

func TestUseMyLocationSelectsNearestProvinceWithoutCity(t *testing.T) {
	api := &fakeAPI{liquors: sampleLiquors()}
	c := NewCoordinator(api, zerolog.Nop())
	ctx := context.Background()

	p := c.UseMyLocation(ctx, 37.5665, 126.9780)
	assert.Equal(t, "서울특별시", p.Name)

	st := c.Snapshot()
	assert.Equal(t, "서울특별시", st.Province)
	assert.Empty(t, st.City)
	require.Len(t, api.weatherCalls, 1)
	assert.Equal(t, "11", api.weatherCalls[0][0])
}

func TestParseLeadingFloat(t *testing.T) {
	assert.InDelta(t, 13, parseLeadingFloat("13%"), 0.001)
	assert.InDelta(t, 6.5, parseLeadingFloat("6.5%"), 0.001)
	assert.InDelta(t, 45, parseLeadingFloat(" 45도"), 0.001)
	assert.Zero(t, parseLeadingFloat("도수 미상"))
	assert.Zero(t, parseLeadingFloat(""))
}
