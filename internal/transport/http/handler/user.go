package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JasjusSirsak/bolususu/internal/domain"
	"github.com/JasjusSirsak/bolususu/internal/service"
	"github.com/JasjusSirsak/bolususu/internal/transport/http/ez"
	mdw "github.com/JasjusSirsak/bolususu/internal/transport/http/middleware"
)

// User serves the caller's own profile, preferences and project list.
type User struct {
	Base
	Users    *service.UserService
	Projects *service.ProjectRegistry
}

type profileIn struct {
	Name  string `json:"name"  binding:"required,notblank,max=128"`
	Email string `json:"email" binding:"required,email,max=191"`
}

func (h *User) MountAPI(api *gin.RouterGroup) {
	e := h.authed(api, "/user")

	ez.RegisterAction(e, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/profile",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.Users.Profile(c.Request.Context(), mdw.UserID(c))
		},
	})
	ez.RegisterAction(e, ez.Action[profileIn, *domain.User]{
		Method: http.MethodPut,
		Path:   "/profile",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *profileIn) (*domain.User, error) {
			return h.Users.UpdateProfile(c.Request.Context(), mdw.UserID(c), in.Name, in.Email)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, domain.UserPreference]{
		Method: http.MethodGet,
		Path:   "/preferences",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (domain.UserPreference, error) {
			return h.Users.Preferences(c.Request.Context(), mdw.UserID(c))
		},
	})
	ez.RegisterAction(e, ez.Action[service.PreferencesInput, domain.UserPreference]{
		Method: http.MethodPut,
		Path:   "/preferences",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.PreferencesInput) (domain.UserPreference, error) {
			return h.Users.UpdatePreferences(c.Request.Context(), mdw.UserID(c), *in)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []domain.UserProject]{
		Method: http.MethodGet,
		Path:   "/projects",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.UserProject, error) {
			return h.Projects.ListForUser(c.Request.Context(), mdw.UserID(c))
		},
	})
}
