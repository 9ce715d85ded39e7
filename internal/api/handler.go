package api

import (
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jumak-kr/jumakweb/internal/auth"
	"github.com/jumak-kr/jumakweb/internal/backend"
	"github.com/jumak-kr/jumakweb/internal/geo"
	"github.com/jumak-kr/jumakweb/internal/service"
)

type Handler struct {
	svc     *service.Service
	authSvc *auth.Service

	// imageClient makes the outbound fetches for the image proxy. Separate
	// from the typed backend client so tests can swap transports and timeouts
	// stay independent.
	imageClient *http.Client

	// proxy forwards /api/python/* to the backend origin.
	proxy *httputil.ReverseProxy

	log zerolog.Logger
}

func NewHandler(svc *service.Service, authSvc *auth.Service, backendURL *url.URL, imageClient *http.Client, log zerolog.Logger) *Handler {
	if imageClient == nil {
		imageClient = &http.Client{}
	}
	proxy := httputil.NewSingleHostReverseProxy(backendURL)
	proxy.Transport = imageClient.Transport
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("backend proxy failed")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"backend unavailable"}`))
	}
	return &Handler{
		svc:         svc,
		authSvc:     authSvc,
		imageClient: imageClient,
		proxy:       proxy,
		log:         log,
	}
}

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.GET("/healthz", h.Health)

	api := r.Group("/api")
	{
		api.GET("/image-proxy", h.ImageProxy)
		api.Any("/python/*path", h.PythonProxy)

		api.GET("/geo/provinces", h.Provinces)
		api.GET("/region/nearest", h.NearestProvince)

		api.GET("/search/top", h.TopSearches)
		api.GET("/weather/recommend", h.WeatherRecommend)
		api.GET("/cocktails/random", h.RandomCocktails)

		a := api.Group("/auth")
		{
			a.GET("/login", h.Login)
			a.GET("/callback", h.Callback)
			a.POST("/logout", h.Logout)
			a.GET("/session", h.Session)
		}

		notes := api.Group("/notes")
		{
			notes.GET("", h.PublicNotes)
			notes.GET("/liquor/:liquor_id", h.NotesByLiquor)

			authed := notes.Group("", h.authSvc.Middleware())
			{
				authed.POST("", h.CreateNote)
				authed.GET("/user/:user_id", h.NotesByUser)
				authed.PUT("/:note_id", h.UpdateNote)
				authed.DELETE("/:note_id", h.DeleteNote)
			}
		}
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Provinces: GET /api/geo/provinces
func (h *Handler) Provinces(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"meta": gin.H{"count": len(geo.Provinces)},
		"data": geo.Provinces,
	})
}

// NearestProvince: GET /api/region/nearest?lat=37.56&lon=126.97
func (h *Handler) NearestProvince(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing lat/lon parameters"})
		return
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lat/lon values"})
		return
	}
	p := geo.NearestProvince(lat, lon)
	c.JSON(http.StatusOK, gin.H{"data": p})
}

// TopSearches: GET /api/search/top?limit=10
func (h *Handler) TopSearches(c *gin.Context) {
	lim := parseLimit(c.DefaultQuery("limit", "10"))
	ranks, err := h.svc.TopSearches(c.Request.Context(), lim)
	if err != nil {
		h.backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"meta": gin.H{"count": len(ranks), "limit": lim},
		"data": ranks,
	})
}

// WeatherRecommend: GET /api/weather/recommend?adm_cd=11&city=종로구
func (h *Handler) WeatherRecommend(c *gin.Context) {
	admCd := c.Query("adm_cd")
	if admCd == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing adm_cd parameter"})
		return
	}
	rec, err := h.svc.WeatherRecommend(c.Request.Context(), admCd, c.Query("city"))
	if err != nil {
		h.backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rec})
}

// RandomCocktails: GET /api/cocktails/random?limit=6
func (h *Handler) RandomCocktails(c *gin.Context) {
	lim := parseLimit(c.DefaultQuery("limit", "6"))
	cocktails, err := h.svc.RandomCocktails(c.Request.Context(), lim)
	if err != nil {
		h.backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"meta": gin.H{"count": len(cocktails)},
		"data": cocktails,
	})
}

// backendError maps an upstream APIError onto the response, keeping the
// backend's status and detail, and treats everything else as a 502.
func (h *Handler) backendError(c *gin.Context, err error) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.StatusCode, gin.H{"error": apiErr.Detail})
		return
	}
	h.log.Error().Err(err).Str("path", c.FullPath()).Msg("backend call failed")
	c.JSON(http.StatusBadGateway, gin.H{"error": "backend unavailable"})
}

// parseLimit ensures a sane integer limit, with bounds
func parseLimit(s string) int {
	l, err := strconv.Atoi(s)
	if err != nil || l <= 0 {
		return 10
	}
	if l > 100 {
		return 100
	}
	return l
}
