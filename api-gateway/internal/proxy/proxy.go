// Package proxy forwards public API calls to the owning backend service.
package proxy

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opaquechat/chat/shared/middleware"
)

// Targets holds the base URLs of the backend services, without a trailing slash.
type Targets struct {
	UserServiceURL    string
	MessageServiceURL string
}

// Proxy relays requests unchanged and copies the backend response back.
type Proxy struct {
	client *http.Client
}

func New(timeout time.Duration) *Proxy {
	return &Proxy{client: &http.Client{Timeout: timeout}}
}

// Register mounts every public route on r.
func (p *Proxy) Register(r gin.IRouter, targets Targets) {
	// User routes
	r.POST("/users", p.To(targets.UserServiceURL))
	r.GET("/users", p.To(targets.UserServiceURL))
	r.GET("/users/:id", p.To(targets.UserServiceURL))
	r.GET("/users/:id/stats", p.To(targets.UserServiceURL))
	r.GET("/users/username/:username", p.To(targets.UserServiceURL))

	// Message routes
	r.POST("/mensagens", p.To(targets.MessageServiceURL))
	r.GET("/mensagens/ultimas", p.To(targets.MessageServiceURL))
}

// hopHeaders are not forwarded in either direction. CORS headers are set by
// the gateway's own middleware.
var hopHeaders = map[string]bool{
	"Connection":                       true,
	"Keep-Alive":                       true,
	"Transfer-Encoding":                true,
	"Upgrade":                          true,
	"Content-Length":                   true,
	"Access-Control-Allow-Origin":      true,
	"Access-Control-Allow-Credentials": true,
	"Access-Control-Expose-Headers":    true,
	"Vary":                             true,
}

func (p *Proxy) To(serviceURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Build target URL. The escaped form keeps %3F, %23 and %25 inside
		// path parameters from being re-read as query, fragment or escape.
		targetURL := serviceURL + c.Request.URL.EscapedPath()
		if c.Request.URL.RawQuery != "" {
			targetURL += "?" + c.Request.URL.RawQuery
		}

		var bodyBytes []byte
		if c.Request.Body != nil {
			var err error
			bodyBytes, err = io.ReadAll(c.Request.Body)
			if err != nil {
				middleware.RespondWithError(c, http.StatusBadRequest, "Failed to read request body")
				return
			}
		}

		req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, targetURL, bytes.NewReader(bodyBytes))
		if err != nil {
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to create request")
			return
		}
		copyHeaders(req.Header, c.Request.Header)
		req.Header.Set(middleware.RequestIDHeader, middleware.GetRequestID(c))

		resp, err := p.client.Do(req)
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "error proxying request",
				"target", targetURL,
				"error", err,
				"request_id", middleware.GetRequestID(c),
			)
			middleware.RespondWithError(c, http.StatusBadGateway, "Service unavailable")
			return
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			middleware.RespondWithError(c, http.StatusBadGateway, "Failed to read response")
			return
		}

		for key, values := range resp.Header {
			if hopHeaders[key] {
				continue
			}
			c.Writer.Header()[key] = values
		}
		c.Data(resp.StatusCode, resp.Header.Get("Content-Type"), respBody)
	}
}

func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		if hopHeaders[key] {
			continue
		}
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}
