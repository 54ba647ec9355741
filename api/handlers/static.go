package handlers

import (
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"blog-api/dto"
)

// LegacySlugRedirect permanently redirects old frontend links of the form
// /?slug=x or /post.html?slug=x to <blogPath>/x.
func LegacySlugRedirect(blogPath string) gin.HandlerFunc {
	blogPath = "/" + strings.Trim(blogPath, "/")
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		p := c.Request.URL.Path
		s := c.Query("slug")
		if s == "" || (p != "/" && !strings.HasSuffix(p, ".html")) {
			c.Next()
			return
		}
		c.Redirect(http.StatusMovedPermanently, path.Join(blogPath, url.PathEscape(s)))
		c.Abort()
	}
}

// NotFoundHandler answers unmatched routes. With a static dir it serves
// files from it and falls back to index.html so client-side routes work;
// /api paths always get a JSON 404.
func NotFoundHandler(staticDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		isRead := c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead
		if staticDir == "" || !isRead || p == "/api" || strings.HasPrefix(p, "/api/") {
			c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: "Not found"})
			return
		}

		file := filepath.Join(staticDir, filepath.FromSlash(path.Clean("/"+p)))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		index := filepath.Join(staticDir, "index.html")
		if _, err := os.Stat(index); err == nil {
			c.File(index)
			return
		}
		c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: "Not found"})
	}
}
