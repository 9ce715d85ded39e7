// Package ocr implements the label lookup flow: upload an image, run backend
// OCR plus fuzzy matching, and optionally chain AI pairing generation.
package ocr

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jumak-kr/jumakweb/internal/backend"
)

// MinLoading is the floor on how long the loading state stays visible. The
// loading animation must play for at least this long regardless of backend
// latency; this is a UX contract, not a performance artifact.
const MinLoading = 2 * time.Second

// ViewState is the flow's current screen.
type ViewState string

const (
	StateInput   ViewState = "input"
	StateLoading ViewState = "loading"
	StateResult  ViewState = "result"
)

// API is the backend surface the flow drives.
type API interface {
	AnalyzeLabel(ctx context.Context, filename string, file io.Reader, provider string) (*backend.OCRResult, error)
	GenerateCocktail(ctx context.Context, drinkName string) (*backend.GeneratedCocktail, error)
	RecommendHansang(ctx context.Context, req backend.HansangRequest) ([]backend.HansangItem, error)
}

// FoodPairing is the AI's food suggestion riding along with a cocktail.
type FoodPairing struct {
	Name   string
	Reason string
}

// Flow is one OCR lookup session: input -> loading -> result, with
// result -> input only via Retry.
type Flow struct {
	api        API
	log        zerolog.Logger
	minLoading time.Duration

	mu                 sync.Mutex
	state              ViewState
	provider           string
	autoGenerate       bool
	imageName          string
	text               string
	match              *backend.DrinkDetail
	cocktails          []backend.Cocktail
	food               *FoodPairing
	hansang            []backend.HansangItem
	generatingCocktail bool
	generatingHansang  bool
}

// NewFlow builds a flow. minLoading <= 0 selects the 2-second default.
func NewFlow(a API, minLoading time.Duration, log zerolog.Logger) *Flow {
	if minLoading <= 0 {
		minLoading = MinLoading
	}
	return &Flow{api: a, log: log, minLoading: minLoading, state: StateInput, provider: "gemini"}
}

// SetProvider records the OCR engine toggle (gemini or clova). Recorded only;
// it does not affect state transitions.
func (f *Flow) SetProvider(provider string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.provider = provider
}

// SetAutoGenerate records the "auto-generate AI pairing" toggle.
func (f *Flow) SetAutoGenerate(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.autoGenerate = on
}

// SetImage accepts a picked or dropped file. Dropped files must carry an
// image/* MIME type; anything else is ignored. Accepting a new image clears
// all prior result state.
func (f *Flow) SetImage(name, mimeType string) bool {
	if !strings.HasPrefix(mimeType, "image/") {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imageName = name
	f.clearResultsLocked()
	return true
}

// Submit runs the analysis. It blocks until the later of the backend response
// and the minimum-loading timer, then lands in StateResult. Backend errors
// land there too, surfaced as the result text rather than retried.
func (f *Flow) Submit(ctx context.Context, file io.Reader) {
	f.mu.Lock()
	if f.state != StateInput || f.imageName == "" {
		f.mu.Unlock()
		return
	}
	f.state = StateLoading
	f.clearResultsLocked()
	name := f.imageName
	provider := f.provider
	f.mu.Unlock()

	start := time.Now()
	res, err := f.api.AnalyzeLabel(ctx, name, file, provider)
	if remaining := f.minLoading - time.Since(start); remaining > 0 {
		select {
		case <-time.After(remaining):
		case <-ctx.Done():
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case err == nil:
		f.text = res.Text
		f.match = res.SearchResult
		if f.autoGenerate && f.match != nil && len(f.match.Cocktails) == 0 {
			go f.GenerateCocktail(context.Background(), f.match.Name)
		}
	default:
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			f.text = "Error: " + apiErr.Detail
		} else {
			f.text = "Error: Failed to connect to server"
		}
		f.log.Error().Err(err).Msg("label analysis failed")
	}
	f.state = StateResult
}

// GenerateCocktail asks for one more cocktail recipe. Results accumulate:
// repeated invocations append rather than replace, with no cap on how many a
// user may request.
func (f *Flow) GenerateCocktail(ctx context.Context, drinkName string) {
	f.mu.Lock()
	f.generatingCocktail = true
	f.mu.Unlock()

	gen, err := f.api.GenerateCocktail(ctx, drinkName)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.generatingCocktail = false
	if err != nil {
		f.log.Error().Err(err).Str("drink", drinkName).Msg("cocktail generation failed")
		return
	}
	f.cocktails = append(f.cocktails, gen.Cocktail)
	if gen.FoodPairingName != "" {
		f.food = &FoodPairing{Name: gen.FoodPairingName, Reason: gen.FoodPairingReason}
	}
}

// GenerateHansang asks for a traditional table pairing themed on the matched
// drink and region. Replaces any previous hansang list.
func (f *Flow) GenerateHansang(ctx context.Context, province, city string) {
	f.mu.Lock()
	if f.match == nil {
		f.mu.Unlock()
		return
	}
	req := backend.HansangRequest{
		DrinkName:        f.match.Name,
		Province:         province,
		City:             city,
		DrinkDescription: f.match.Intro,
	}
	f.generatingHansang = true
	f.mu.Unlock()

	items, err := f.api.RecommendHansang(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.generatingHansang = false
	if err != nil {
		f.log.Error().Err(err).Msg("hansang generation failed")
		return
	}
	f.hansang = items
}

// Retry returns to the input screen, dropping the image and all results.
func (f *Flow) Retry() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateInput
	f.imageName = ""
	f.clearResultsLocked()
}

func (f *Flow) clearResultsLocked() {
	f.text = ""
	f.match = nil
	f.cocktails = nil
	f.food = nil
	f.hansang = nil
	f.generatingCocktail = false
	f.generatingHansang = false
}

// Snapshot is a point-in-time copy for rendering and tests.
type Snapshot struct {
	State              ViewState
	Provider           string
	AutoGenerate       bool
	ImageName          string
	Text               string
	Match              *backend.DrinkDetail
	Cocktails          []backend.Cocktail
	Food               *FoodPairing
	Hansang            []backend.HansangItem
	GeneratingCocktail bool
	GeneratingHansang  bool
}

// Snapshot returns the current flow state.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		State:              f.state,
		Provider:           f.provider,
		AutoGenerate:       f.autoGenerate,
		ImageName:          f.imageName,
		Text:               f.text,
		Match:              f.match,
		Cocktails:          append([]backend.Cocktail(nil), f.cocktails...),
		Food:               f.food,
		Hansang:            append([]backend.HansangItem(nil), f.hansang...),
		GeneratingCocktail: f.generatingCocktail,
		GeneratingHansang:  f.generatingHansang,
	}
}
