// Package ginscope binds the injectkit container to Gin: the middleware
// opens a fresh unit-of-work scope per request, so scoped services live
// exactly as long as the request that resolved them.
//
//	r := gin.New()
//	r.Use(ginscope.Middleware(container))
//	r.GET("/orders", func(c *gin.Context) {
//	    svc, err := ginscope.Resolve[*OrderService](c)
//	    ...
//	})
//
// The Server component wraps a gin engine for registration with the
// bootstrap component registry.
package ginscope
