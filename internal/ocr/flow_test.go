package ocr

import (
	"context"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumak-kr/jumakweb/internal/backend"
)

type fakeAPI struct {
	analyzeResult *backend.OCRResult
	analyzeErr    error
	analyzeDelay  time.Duration

	cocktailCalls int32
	cocktail      *backend.GeneratedCocktail

	hansangItems []backend.HansangItem
}

func (f *fakeAPI) AnalyzeLabel(ctx context.Context, filename string, file io.Reader, provider string) (*backend.OCRResult, error) {
	if f.analyzeDelay > 0 {
		time.Sleep(f.analyzeDelay)
	}
	return f.analyzeResult, f.analyzeErr
}

func (f *fakeAPI) GenerateCocktail(ctx context.Context, drinkName string) (*backend.GeneratedCocktail, error) {
	atomic.AddInt32(&f.cocktailCalls, 1)
	if f.cocktail != nil {
		return f.cocktail, nil
	}
	return &backend.GeneratedCocktail{Cocktail: backend.Cocktail{Title: drinkName + " 하이볼"}}, nil
}

func (f *fakeAPI) RecommendHansang(ctx context.Context, req backend.HansangRequest) ([]backend.HansangItem, error) {
	return f.hansangItems, nil
}

func matchedDrink(name string) *backend.DrinkDetail {
	id := 5
	return &backend.DrinkDetail{ID: &id, Name: name, Cocktails: []backend.Cocktail{}}
}

func TestRejectsNonImageDrop(t *testing.T) {
	f := NewFlow(&fakeAPI{}, 10*time.Millisecond, zerolog.Nop())
	assert.False(t, f.SetImage("notes.pdf", "application/pdf"))
	assert.True(t, f.SetImage("label.jpg", "image/jpeg"))
}

func TestMinimumLoadingFloor(t *testing.T) {
	api := &fakeAPI{analyzeResult: &backend.OCRResult{Text: "빠른 응답"}}
	f := NewFlow(api, 80*time.Millisecond, zerolog.Nop())
	require.True(t, f.SetImage("label.jpg", "image/jpeg"))

	start := time.Now()
	f.Submit(context.Background(), strings.NewReader("img"))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond,
		"result must not appear before the loading floor elapses")
	assert.Equal(t, StateResult, f.Snapshot().State)
}

func TestSlowBackendIsNotDelayedFurther(t *testing.T) {
	api := &fakeAPI{
		analyzeResult: &backend.OCRResult{Text: "느린 응답"},
		analyzeDelay:  60 * time.Millisecond,
	}
	f := NewFlow(api, 20*time.Millisecond, zerolog.Nop())
	require.True(t, f.SetImage("label.jpg", "image/jpeg"))

	start := time.Now()
	f.Submit(context.Background(), strings.NewReader("img"))
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 110*time.Millisecond)
}

func TestEndToEndAutoGenerate(t *testing.T) {
	api := &fakeAPI{
		analyzeResult: &backend.OCRResult{Text: "OCR TEXT", SearchResult: matchedDrink("막걸리A")},
	}
	f := NewFlow(api, 5*time.Millisecond, zerolog.Nop())
	f.SetAutoGenerate(true)
	require.True(t, f.SetImage("label.jpg", "image/jpeg"))

	f.Submit(context.Background(), strings.NewReader("img"))

	st := f.Snapshot()
	assert.Equal(t, StateResult, st.State)
	assert.Equal(t, "OCR TEXT", st.Text)
	require.NotNil(t, st.Match)
	assert.Equal(t, "막걸리A", st.Match.Name)

	// cocktails was empty, so generation fires automatically.
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&api.cocktailCalls) == 1 && len(f.Snapshot().Cocktails) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestAutoGenerateSkippedWhenCocktailsExist(t *testing.T) {
	match := matchedDrink("이강주")
	match.Cocktails = []backend.Cocktail{{Title: "기존 칵테일"}}
	api := &fakeAPI{analyzeResult: &backend.OCRResult{Text: "t", SearchResult: match}}
	f := NewFlow(api, 5*time.Millisecond, zerolog.Nop())
	f.SetAutoGenerate(true)
	require.True(t, f.SetImage("label.jpg", "image/jpeg"))

	f.Submit(context.Background(), strings.NewReader("img"))
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&api.cocktailCalls))
}

func TestBackendErrorStillReachesResult(t *testing.T) {
	api := &fakeAPI{analyzeErr: &backend.APIError{StatusCode: 422, Detail: "이미지를 읽을 수 없습니다"}}
	f := NewFlow(api, 5*time.Millisecond, zerolog.Nop())
	require.True(t, f.SetImage("label.jpg", "image/jpeg"))

	f.Submit(context.Background(), strings.NewReader("img"))

	st := f.Snapshot()
	assert.Equal(t, StateResult, st.State)
	assert.Nil(t, st.Match)
	assert.Equal(t, "Error: 이미지를 읽을 수 없습니다", st.Text)
}

func TestRepeatedGenerationAccumulates(t *testing.T) {
	api := &fakeAPI{analyzeResult: &backend.OCRResult{Text: "t", SearchResult: matchedDrink("복분자주")}}
	f := NewFlow(api, 5*time.Millisecond, zerolog.Nop())
	require.True(t, f.SetImage("label.jpg", "image/jpeg"))
	f.Submit(context.Background(), strings.NewReader("img"))

	f.GenerateCocktail(context.Background(), "복분자주")
	f.GenerateCocktail(context.Background(), "복분자주")
	f.GenerateCocktail(context.Background(), "복분자주")

	assert.Len(t, f.Snapshot().Cocktails, 3, "recommend-again appends, never replaces")
}

func TestFoodPairingCapturedFromGeneration(t *testing.T) {
	api := &fakeAPI{
		analyzeResult: &backend.OCRResult{Text: "t", SearchResult: matchedDrink("한산소곡주")},
		cocktail: &backend.GeneratedCocktail{
			Cocktail:          backend.Cocktail{Title: "소곡주 사워"},
			FoodPairingName:   "파전",
			FoodPairingReason: "기름진 맛과 어울립니다",
		},
	}
	f := NewFlow(api, 5*time.Millisecond, zerolog.Nop())
	require.True(t, f.SetImage("label.jpg", "image/jpeg"))
	f.Submit(context.Background(), strings.NewReader("img"))

	f.GenerateCocktail(context.Background(), "한산소곡주")
	st := f.Snapshot()
	require.NotNil(t, st.Food)
	assert.Equal(t, "파전", st.Food.Name)
}

func TestHansangGenerationReplacesList(t *testing.T) {
	api := &fakeAPI{
		analyzeResult: &backend.OCRResult{Text: "t", SearchResult: matchedDrink("법주")},
		hansangItems:  []backend.HansangItem{{Name: "경주 교동 한상", Reason: "지역 전통"}},
	}
	f := NewFlow(api, 5*time.Millisecond, zerolog.Nop())
	require.True(t, f.SetImage("label.jpg", "image/jpeg"))
	f.Submit(context.Background(), strings.NewReader("img"))

	f.GenerateHansang(context.Background(), "경상북도", "경주시")
	require.Len(t, f.Snapshot().Hansang, 1)

	api.hansangItems = []backend.HansangItem{{Name: "새 한상"}}
	f.GenerateHansang(context.Background(), "경상북도", "경주시")
	st := f.Snapshot()
	require.Len(t, st.Hansang, 1)
	assert.Equal(t, "새 한상", st.Hansang[0].Name)
}

func TestRetryResetsEverything(t *testing.T) {
	api := &fakeAPI{analyzeResult: &backend.OCRResult{Text: "t", SearchResult: matchedDrink("막걸리")}}
	f := NewFlow(api, 5*time.Millisecond, zerolog.Nop())
	require.True(t, f.SetImage("label.jpg", "image/jpeg"))
	f.Submit(context.Background(), strings.NewReader("img"))
	f.GenerateCocktail(context.Background(), "막걸리")

	f.Retry()
	st := f.Snapshot()
	assert.Equal(t, StateInput, st.State)
	assert.Empty(t, st.ImageName)
	assert.Empty(t, st.Text)
	assert.Nil(t, st.Match)
	assert.Empty(t, st.Cocktails)
}
