package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/user-account-service/internal/application"
	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/internal/infrastructure/search"
	"github.com/oksasatya/user-account-service/pkg/response"
	"github.com/oksasatya/user-account-service/pkg/validation"
)

// statusClientClosed is logged and written when the caller cancels the request.
const statusClientClosed = 499

// ServiceFactory builds a UserService bound to a fresh unit of work. release
// must be called once the request is done.
type ServiceFactory func() (svc *userapp.UserService, release func())

type UserSearcher interface {
	Search(ctx context.Context, q string, size int) ([]search.UserDocument, error)
}

type UserHandler struct {
	NewService ServiceFactory
	Search     UserSearcher
	Logger     *logrus.Logger
}

func NewUserHandler(factory ServiceFactory, searcher UserSearcher, logger *logrus.Logger) *UserHandler {
	return &UserHandler{NewService: factory, Search: searcher, Logger: logger}
}

type createUserRequest struct {
	Name      string `json:"name" binding:"required,person_name"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,pwd"`
	BirthDate string `json:"birth_date" binding:"required,date_only"`
	Phone     string `json:"phone" binding:"omitempty,phone_br"`
}

type updateUserRequest struct {
	Name      string `json:"name" binding:"required,person_name"`
	Email     string `json:"email" binding:"required,email"`
	BirthDate string `json:"birth_date" binding:"required,date_only"`
	Phone     string `json:"phone" binding:"omitempty,phone_br"`
	Active    *bool  `json:"active" binding:"required"`
}

type emailExistsQuery struct {
	Email string `form:"email" json:"email" binding:"required,email"`
}

type searchQuery struct {
	Q    string `form:"q" json:"q" binding:"required"`
	Size int    `form:"size" json:"size" binding:"omitempty,min=1,max=50"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	BirthDate string    `json:"birth_date"`
	Phone     *string   `json:"phone"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(u entity.UserRead) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		BirthDate: u.BirthDate.Format(time.DateOnly),
		Phone:     u.Phone,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// parseDate expects a value already checked by the date_only tag.
func parseDate(s string) time.Time {
	d, _ := time.Parse(time.DateOnly, s)
	return d
}

func (h *UserHandler) List(c *gin.Context) {
	svc, release := h.NewService()
	defer release()

	users, err := svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toResponse(u))
	}
	response.Success(c, http.StatusOK, out, "users", map[string]any{"count": len(out)})
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	svc, release := h.NewService()
	defer release()

	u, found, err := svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !found {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, toResponse(u), "user", nil)
}

func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	svc, release := h.NewService()
	defer release()

	u, err := svc.Create(c.Request.Context(), userapp.CreateUserInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		BirthDate: parseDate(req.BirthDate),
		Phone:     optional(req.Phone),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Location", "/api/users/"+strconv.FormatInt(u.ID, 10))
	response.Success(c, http.StatusCreated, toResponse(u), "user created", nil)
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	svc, release := h.NewService()
	defer release()

	u, err := svc.Update(c.Request.Context(), id, userapp.UpdateUserInput{
		Name:      req.Name,
		Email:     req.Email,
		BirthDate: parseDate(req.BirthDate),
		Phone:     optional(req.Phone),
		Active:    *req.Active,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toResponse(u), "user updated", nil)
}

func (h *UserHandler) Remove(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	svc, release := h.NewService()
	defer release()

	removed, err := svc.Remove(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !removed {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) EmailExists(c *gin.Context) {
	var q emailExistsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	svc, release := h.NewService()
	defer release()

	exists, err := svc.EmailExists(c.Request.Context(), q.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exists": exists}, "email lookup", nil)
}

func (h *UserHandler) SearchUsers(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	if h.Search == nil {
		response.Error[any](c, http.StatusServiceUnavailable, "search disabled", nil)
		return
	}
	docs, err := h.Search.Search(c.Request.Context(), q.Q, q.Size)
	if errors.Is(err, search.ErrDisabled) {
		response.Error[any](c, http.StatusServiceUnavailable, "search disabled", nil)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, docs, "search results", map[string]any{"count": len(docs)})
}

func (h *UserHandler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error[any](c, http.StatusBadRequest, "invalid user id", nil)
		return 0, false
	}
	return id, true
}

func (h *UserHandler) fail(c *gin.Context, err error) {
	var verr *userapp.ValidationError
	var cerr *userapp.ConflictError
	switch {
	case errors.Is(err, userapp.ErrUnderage):
		response.Error[any](c, http.StatusUnprocessableEntity, "user is below the minimum age", userapp.ErrUnderage.Reason)
	case errors.As(err, &verr):
		response.Error[any](c, http.StatusUnprocessableEntity, "invalid user data", verr.Reason)
	case errors.As(err, &cerr):
		response.Error[any](c, http.StatusConflict, "email already registered", cerr.Reason)
	case errors.Is(err, userapp.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
	case errors.Is(err, context.Canceled):
		if h.Logger != nil {
			h.Logger.WithField("path", c.FullPath()).Debug("request cancelled by client")
		}
		c.AbortWithStatus(statusClientClosed)
	case errors.Is(err, context.DeadlineExceeded):
		response.Error[any](c, http.StatusGatewayTimeout, "request timed out", nil)
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).WithFields(logrus.Fields{
				"path":       c.FullPath(),
				"request_id": c.GetString("request_id"),
			}).Error("user request failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
	}
}
