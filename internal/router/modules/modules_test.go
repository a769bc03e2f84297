package modules

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	handlers "github.com/oksasatya/user-account-service/internal/interface/http"
)

func routeSet(r *gin.Engine) map[string]bool {
	out := map[string]bool{}
	for _, ri := range r.Routes() {
		out[ri.Method+" "+ri.Path] = true
	}
	return out
}

func TestUserModule_Register(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewUserModule(handlers.NewUserHandler(nil, nil, nil), nil, 300, 60).Register(r.Group("/api"))

	routes := routeSet(r)
	for _, want := range []string{
		"GET /api/users",
		"GET /api/users/:id",
		"GET /api/users/email-exists",
		"GET /api/users/search",
		"POST /api/users",
		"PUT /api/users/:id",
		"DELETE /api/users/:id",
	} {
		assert.True(t, routes[want], want)
	}
}

func TestDebugModule_Register(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewDebugModule(nil).Register(r.Group("/api"))

	assert.True(t, routeSet(r)["GET /api/debug/vars"])
}
