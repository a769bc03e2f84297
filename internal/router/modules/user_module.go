package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/user-account-service/internal/interface/http"
	"github.com/oksasatya/user-account-service/internal/interface/middleware"
)

// UserModule wires the user account handlers under /users.
// Reads: GET /users, GET /users/:id, GET /users/email-exists, GET /users/search
// Writes: POST /users, PUT /users/:id, DELETE /users/:id
type UserModule struct {
	Handler     *handlers.UserHandler
	Redis       *redis.Client
	ReadPerMin  int
	WritePerMin int
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client, readPerMin, writePerMin int) *UserModule {
	return &UserModule{Handler: h, Redis: rdb, ReadPerMin: readPerMin, WritePerMin: writePerMin}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	read := middleware.RateLimit(m.Redis, m.ReadPerMin, time.Minute, middleware.KeyByIPAndScope("users-read"), middleware.AllowPrivateIP())
	write := middleware.RateLimit(m.Redis, m.WritePerMin, time.Minute, middleware.KeyByIPAndScope("users-write"), nil)

	users := rg.Group("/users")
	{
		users.GET("", read, m.Handler.List)
		users.GET("/email-exists", read, m.Handler.EmailExists)
		users.GET("/search", read, m.Handler.SearchUsers)
		users.GET("/:id", read, m.Handler.Get)

		users.POST("", write, m.Handler.Create)
		users.PUT("/:id", write, m.Handler.Update)
		users.DELETE("/:id", write, m.Handler.Remove)
	}
}
