package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// baseURL returns the external base URL without a trailing slash: the
// configured override when set, otherwise inferred from the request.
func baseURL(c *gin.Context, override string) string {
	if override != "" {
		return strings.TrimRight(override, "/")
	}
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	host := c.Request.Host
	if host == "" {
		host = "127.0.0.1:5000"
	}
	return scheme + "://" + host
}

// isPDF checks the filename extension the same way the upload form does.
func isPDF(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}
