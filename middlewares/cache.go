package middlewares

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/billiard-pos/cache"
)

// captureWriter copies the response body while forwarding it to the client.
type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CatalogCache serves GET responses from the catalog cache and stores
// successful ones. Any redis failure is a miss.
func CatalogCache(catalog *cache.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || !catalog.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key, err := catalog.Key(ctx, c.Request.URL.Path, c.Request.URL.RawQuery)
		if err != nil {
			c.Next()
			return
		}
		if body, ok := catalog.Get(ctx, key); ok {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", body)
			c.Abort()
			return
		}

		cw := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Header("X-Cache", "MISS")

		c.Next()

		if cw.Status() == http.StatusOK {
			catalog.Set(ctx, key, cw.buf.Bytes())
		}
	}
}
