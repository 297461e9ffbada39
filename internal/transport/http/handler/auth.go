package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JasjusSirsak/bolususu/internal/domain"
	"github.com/JasjusSirsak/bolususu/internal/service"
	"github.com/JasjusSirsak/bolususu/internal/transport/http/ez"
	mdw "github.com/JasjusSirsak/bolususu/internal/transport/http/middleware"
)

// Auth serves registration, login and the caller's identity.
type Auth struct {
	Base
	Users *service.UserService
	// Limit throttles the credential endpoints; nil disables it.
	Limit gin.HandlerFunc
}

func (h *Auth) Priority() int { return 10 }

type loginIn struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Auth) MountAPI(api *gin.RouterGroup) {
	g := api.Group("/auth")
	if h.Limit != nil {
		g.Use(h.Limit)
	}
	pub := h.public(g)

	ez.RegisterAction(pub, ez.Action[service.RegisterInput, gin.H]{
		Method: http.MethodPost,
		Path:   "/register",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *service.RegisterInput) (gin.H, error) {
			u, err := h.Users.Register(c.Request.Context(), *in)
			if err != nil {
				return nil, err
			}
			return gin.H{"user": u}, nil
		},
	})

	ez.RegisterAction(pub, ez.Action[loginIn, *service.LoginResult]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (*service.LoginResult, error) {
			return h.Users.Login(c.Request.Context(), in.Email, in.Password)
		},
	})

	me := h.authed(api, "")
	ez.RegisterAction(me, ez.Action[struct{}, domain.Identity]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (domain.Identity, error) {
			id, _ := mdw.Identity(c)
			return id, nil
		},
	})
}
