package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Client is a typed HTTP client for the jumak backend API. Every call is a
// single request with no automatic retry; failures are terminal for the one
// user action that triggered them.
type Client struct {
	baseURL string
	hc      *http.Client
	log     zerolog.Logger
}

// NewClient creates a client for the given base URL (e.g. http://backend:8000).
// If httpClient is nil, a default with timeout is used.
func NewClient(baseURL string, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      httpClient,
		log:     log,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("backend: new request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("path", path).Msg("backend request failed")
		return fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.log.Debug().Str("path", path).Int("status", resp.StatusCode).Dur("latency", time.Since(start)).Msg("backend request")

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("backend: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Detail: errorDetail(respBody)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("backend: decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("backend: marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(b), "application/json", out)
}

// errorDetail pulls the FastAPI-style {"detail": "..."} message out of an
// error body, falling back to the raw text.
func errorDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return string(bytes.TrimSpace(body))
}

// Search runs the fuzzy match for a query. The backend answers either
// {candidates: [...]} inside a best-match object, or a bare object with no
// candidates; the latter is wrapped into a one-element candidate list.
func (c *Client) Search(ctx context.Context, query string) (*SearchResponse, error) {
	var detail DrinkDetail
	if err := c.postJSON(ctx, "/search", map[string]string{"query": query}, &detail); err != nil {
		return nil, err
	}
	res := &SearchResponse{Best: &detail, Candidates: detail.Candidates}
	if len(res.Candidates) == 0 {
		res.Candidates = []SearchCandidate{{
			ID:       detail.ID,
			Name:     detail.Name,
			ImageURL: detail.ImageURL,
			Score:    detail.Score,
		}}
	}
	return res, nil
}

// SearchList fetches one page of the browseable drink catalogue.
func (c *Client) SearchList(ctx context.Context, page, size int, query string) (*DrinkList, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	if query != "" {
		q.Set("query", query)
	}
	var list DrinkList
	if err := c.getJSON(ctx, "/search/list?"+q.Encode(), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// RegionQuery selects liquors for a region. WeatherCondition/WeatherSort
// delegate weather-aware ordering to the backend.
type RegionQuery struct {
	Province         string
	City             string
	Season           string
	Size             int
	WeatherCondition string
	WeatherSort      bool
}

// SearchRegion lists liquors for a province, optionally narrowed by city and
// season.
func (c *Client) SearchRegion(ctx context.Context, rq RegionQuery) ([]Liquor, error) {
	q := url.Values{}
	q.Set("province", rq.Province)
	size := rq.Size
	if size <= 0 {
		size = 1000
	}
	q.Set("size", strconv.Itoa(size))
	if rq.City != "" {
		q.Set("city", rq.City)
	}
	if rq.Season != "" {
		q.Set("season", rq.Season)
	}
	if rq.WeatherSort {
		q.Set("weather_condition", rq.WeatherCondition)
		q.Set("weather_sort", "true")
	}
	var liquors []Liquor
	if err := c.getJSON(ctx, "/search/region?"+q.Encode(), &liquors); err != nil {
		return nil, err
	}
	return liquors, nil
}

// SearchSimilar lists drinks similar to the named one.
func (c *Client) SearchSimilar(ctx context.Context, name string, excludeID *int) ([]SimilarDrink, error) {
	body := map[string]any{"name": name}
	if excludeID != nil {
		body["exclude_id"] = *excludeID
	}
	var drinks []SimilarDrink
	if err := c.postJSON(ctx, "/search/similar", body, &drinks); err != nil {
		return nil, err
	}
	return drinks, nil
}

// DrinkDetail fetches the full record for one drink id. Never cached; the
// aggregate is re-fetched per drink.
func (c *Client) DrinkDetail(ctx context.Context, id int) (*DrinkDetail, error) {
	var detail DrinkDetail
	if err := c.getJSON(ctx, "/search/detail/"+strconv.Itoa(id), &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// TopSearches returns today's most-viewed drinks.
func (c *Client) TopSearches(ctx context.Context, limit int) ([]SearchRank, error) {
	var payload struct {
		TopSearches []SearchRank `json:"top_searches"`
	}
	if err := c.getJSON(ctx, "/search/top-searches?limit="+strconv.Itoa(limit), &payload); err != nil {
		return nil, err
	}
	return payload.TopSearches, nil
}

// Products lists online shop offers for a drink name.
func (c *Client) Products(ctx context.Context, drinkName string) ([]Product, error) {
	var payload struct {
		Products []Product `json:"products"`
	}
	if err := c.getJSON(ctx, "/search/products/"+url.PathEscape(drinkName), &payload); err != nil {
		return nil, err
	}
	return payload.Products, nil
}

// AnalyzeLabel submits a label image for OCR and fuzzy matching. provider
// selects the OCR engine (gemini or clova).
func (c *Client) AnalyzeLabel(ctx context.Context, filename string, file io.Reader, provider string) (*OCRResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("backend: multipart file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("backend: copy image: %w", err)
	}
	if err := mw.WriteField("provider", provider); err != nil {
		return nil, fmt.Errorf("backend: multipart provider: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("backend: close multipart: %w", err)
	}

	var result OCRResult
	if err := c.do(ctx, http.MethodPost, "/ocr/analyze", &buf, mw.FormDataContentType(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GenerateCocktail asks the AI for a cocktail recipe based on a drink.
func (c *Client) GenerateCocktail(ctx context.Context, drinkName string) (*GeneratedCocktail, error) {
	var gen GeneratedCocktail
	if err := c.postJSON(ctx, "/cocktail/generate", map[string]string{"drink_name": drinkName}, &gen); err != nil {
		return nil, err
	}
	return &gen, nil
}

// RecommendHansang asks the AI for a traditional full-table pairing.
func (c *Client) RecommendHansang(ctx context.Context, req HansangRequest) ([]HansangItem, error) {
	var payload struct {
		Items []HansangItem `json:"items"`
	}
	if err := c.postJSON(ctx, "/hansang/recommend", req, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// Chat sends one turn to the default chatbot.
func (c *Client) Chat(ctx context.Context, message string) (*ChatAnswer, error) {
	return c.chat(ctx, "/chatbot/chat", message)
}

// ClassicChat sends one turn to the classic-literature chatbot.
func (c *Client) ClassicChat(ctx context.Context, message string) (*ChatAnswer, error) {
	return c.chat(ctx, "/chatbot/classic-chat", message)
}

func (c *Client) chat(ctx context.Context, path, message string) (*ChatAnswer, error) {
	var answer ChatAnswer
	if err := c.postJSON(ctx, path, map[string]string{"message": message}, &answer); err != nil {
		return nil, err
	}
	return &answer, nil
}

// WeatherRecommend fetches current conditions and matching liquors for an
// administrative code, optionally narrowed to a city.
func (c *Client) WeatherRecommend(ctx context.Context, admCd, city string) (*WeatherRecommendation, error) {
	q := url.Values{}
	q.Set("adm_cd", admCd)
	if city != "" {
		q.Set("city", city)
	}
	var rec WeatherRecommendation
	if err := c.getJSON(ctx, "/weather/recommend?"+q.Encode(), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// RandomCocktails lists random cocktail teasers for the info page.
func (c *Client) RandomCocktails(ctx context.Context, limit int) ([]RandomCocktail, error) {
	var cocktails []RandomCocktail
	if err := c.getJSON(ctx, "/cocktail/random?limit="+strconv.Itoa(limit), &cocktails); err != nil {
		return nil, err
	}
	return cocktails, nil
}

// Notes CRUD against the backend's document store copy of tasting notes. The local
// store (internal/store) is authoritative for this service's own routes; these
// calls exist for pages that still read through the Python API.

// NotePayload mirrors the backend's TastingNoteCreate schema.
type NotePayload struct {
	UserID        string         `json:"user_id"`
	AuthorName    string         `json:"author_name"`
	LiquorID      int            `json:"liquor_id"`
	LiquorName    string         `json:"liquor_name"`
	Rating        int            `json:"rating"`
	FlavorProfile map[string]int `json:"flavor_profile"`
	Content       string         `json:"content"`
	Tags          []string       `json:"tags"`
	Images        []string       `json:"images"`
	IsPublic      bool           `json:"is_public"`
}

// Note is a backend-owned tasting note document.
type Note struct {
	ID string `json:"_id"`
	NotePayload
}

// CreateNote stores a note through the backend.
func (c *Client) CreateNote(ctx context.Context, p NotePayload) (*Note, error) {
	var note Note
	if err := c.postJSON(ctx, "/notes", p, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// NotesByUser lists one user's notes.
func (c *Client) NotesByUser(ctx context.Context, userID string) ([]Note, error) {
	var notes []Note
	if err := c.getJSON(ctx, "/notes/user/"+url.PathEscape(userID), &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// PublicNotes lists public notes, newest first.
func (c *Client) PublicNotes(ctx context.Context, limit int) ([]Note, error) {
	var notes []Note
	if err := c.getJSON(ctx, "/notes?limit="+strconv.Itoa(limit), &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// UpdateNote replaces a note.
func (c *Client) UpdateNote(ctx context.Context, id string, p NotePayload) (*Note, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("backend: marshal note: %w", err)
	}
	var note Note
	if err := c.do(ctx, http.MethodPut, "/notes/"+url.PathEscape(id), bytes.NewReader(b), "application/json", &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// DeleteNote removes a note.
func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/notes/"+url.PathEscape(id), nil, "", nil)
}
