package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// Browser-shaped headers for upstream image hosts. Several of them (nongsaro
// in particular) refuse requests that do not look like a Korean desktop
// browser.
const (
	proxyUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	proxyAccept    = "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8"
	proxyLanguage  = "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7"
)

// ImageProxy: GET /api/image-proxy?url=...
//
// Fetches an external image server-side with spoofed browser headers and
// re-serves it with an aggressive cache policy. The upstream fetch always
// bypasses intermediate caches; the response to the browser is immutable for
// a year.
func (h *Handler) ImageProxy(c *gin.Context) {
	raw := c.Query("url")
	if raw == "" || raw == "undefined" || raw == "null" || !strings.HasPrefix(raw, "http") {
		c.String(http.StatusBadRequest, "Invalid URL: %s", raw)
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, raw, nil)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid URL: %s", raw)
		return
	}
	req.Header.Set("User-Agent", proxyUserAgent)
	req.Header.Set("Accept", proxyAccept)
	req.Header.Set("Accept-Language", proxyLanguage)
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Referer", refererFor(raw))

	resp, err := h.imageClient.Do(req)
	if err != nil {
		h.log.Error().Err(err).Str("url", raw).Msg("image proxy fetch failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.String(resp.StatusCode, "Failed to fetch image: %s", http.StatusText(resp.StatusCode))
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.DataFromReader(http.StatusOK, resp.ContentLength, contentType, resp.Body, nil)
}

// refererFor picks the Referer the upstream host expects. nongsaro checks for
// its own portal URL; everything else gets the image's origin.
func refererFor(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	if strings.Contains(u.Host, "nongsaro.go.kr") {
		return "https://www.nongsaro.go.kr/"
	}
	return u.Scheme + "://" + u.Host + "/"
}

// PythonProxy: ANY /api/python/*path
//
// Forwards the request to the backend API, stripping the /api/python prefix.
// Session cookies never leave this service.
func (h *Handler) PythonProxy(c *gin.Context) {
	r := c.Request.Clone(c.Request.Context())
	r.URL.Path = c.Param("path")
	r.Header.Del("Cookie")
	h.proxy.ServeHTTP(c.Writer, r)
}
