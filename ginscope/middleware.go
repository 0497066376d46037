package ginscope

import (
	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/injectkit/di"
	"github.com/skillsenselab/injectkit/logger"
)

// HeaderScopeID is the response header carrying the request's scope ID,
// useful for correlating logs with a particular unit of work.
const HeaderScopeID = "X-Scope-ID"

// Middleware opens a scope on the container for every request and closes
// it after the handler chain finishes, disposing the scoped services the
// request resolved. The scope rides on the request context, so handlers
// and anything they call can use di.Resolve directly.
func Middleware(container *di.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := container.NewScope()
		c.Request = c.Request.WithContext(scope.Enter(c.Request.Context()))
		c.Header(HeaderScopeID, scope.ID())

		defer func() {
			if err := scope.Close(); err != nil {
				logger.Warn("request scope close failed", logger.Fields(
					logger.FieldScopeID, scope.ID(),
					logger.FieldError, err.Error(),
				))
			}
		}()

		c.Next()
	}
}

// Resolve looks up an unnamed service of type T through the request's
// scope.
func Resolve[T any](c *gin.Context) (*di.Handle[T], error) {
	return di.Resolve[T](c.Request.Context())
}

// ResolveNamed looks up the service of type T registered under name
// through the request's scope.
func ResolveNamed[T any](c *gin.Context, name string) (*di.Handle[T], error) {
	return di.ResolveNamed[T](c.Request.Context(), name)
}

// ScopeFrom returns the request's scope.
func ScopeFrom(c *gin.Context) (*di.Scope, error) {
	return di.FromContext(c.Request.Context())
}
