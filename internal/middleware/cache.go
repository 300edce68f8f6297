package middleware

import (
	"github.com/gin-gonic/gin"
)

const metaContextKey = "response_meta"

// WithResponseMeta gives every request a fresh meta map that handlers fill in
// before rendering the envelope.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(metaContextKey, gin.H{})
		c.Next()
	}
}

// SetQueryMeta marks whether the payload came from the query cache. Stale is
// only written when a refetch failed and the previous copy was served.
func SetQueryMeta(c *gin.Context, fromCache, stale bool) {
	meta := Meta(c)
	meta["from_cache"] = fromCache
	if stale {
		meta["stale"] = true
	}
}

// Meta returns the request's meta map, creating it when WithResponseMeta did
// not run. The result is never nil.
func Meta(c *gin.Context) gin.H {
	if raw, ok := c.Get(metaContextKey); ok {
		if meta, ok := raw.(gin.H); ok {
			return meta
		}
	}
	meta := gin.H{}
	c.Set(metaContextKey, meta)
	return meta
}
