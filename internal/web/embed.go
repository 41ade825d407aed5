// Package web provides the embedded billing pages so the server ships as a
// single binary.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
)

//go:embed dist
var staticFiles embed.FS

// Pages maps each page route to its embedded HTML file.
var Pages = map[string]string{
	"/":          "login.html",
	"/dashboard": "index.html",
	"/billing":   "main.html",
	"/records":   "records.html",
}

// GetFileSystem returns the embedded filesystem with the dist folder as root.
func GetFileSystem() (fs.FS, error) {
	return fs.Sub(staticFiles, "dist")
}

// RegisterStaticRoutes registers the page routes and a catch-all for static
// assets. API routes should be registered first. Paths that match no
// embedded file produce echo.ErrNotFound so the API error handler renders
// them.
func RegisterStaticRoutes(e *echo.Echo) error {
	staticFS, err := GetFileSystem()
	if err != nil {
		return err
	}

	for route, file := range Pages {
		e.GET(route, servePage(staticFS, file))
	}

	fileServer := http.FileServer(http.FS(staticFS))

	// Any, not GET, so unknown paths are 404 for every method rather than 405.
	e.Any("/*", func(c echo.Context) error {
		req := c.Request()
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			return echo.ErrNotFound
		}

		name := strings.TrimPrefix(path.Clean(req.URL.Path), "/")
		stat, err := fs.Stat(staticFS, name)
		if err != nil || stat.IsDir() {
			return echo.ErrNotFound
		}

		fileServer.ServeHTTP(c.Response(), req)
		return nil
	})

	return nil
}

func servePage(staticFS fs.FS, name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		content, err := fs.ReadFile(staticFS, name)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to read "+name)
		}
		return c.HTMLBlob(http.StatusOK, content)
	}
}

// HasEmbeddedFiles returns true if every page is present in the binary.
func HasEmbeddedFiles() bool {
	staticFS, err := GetFileSystem()
	if err != nil {
		return false
	}
	for _, file := range Pages {
		if _, err := fs.Stat(staticFS, file); err != nil {
			return false
		}
	}
	return true
}
