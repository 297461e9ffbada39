package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JasjusSirsak/bolususu/internal/domain"
	"github.com/JasjusSirsak/bolususu/internal/service"
	"github.com/JasjusSirsak/bolususu/internal/transport/http/ez"
	mdw "github.com/JasjusSirsak/bolususu/internal/transport/http/middleware"
)

// Projects serves project creation, joining by code and member listing.
type Projects struct {
	Base
	Projects *service.ProjectRegistry
}

type createProjectIn struct {
	Name        string `json:"name"        binding:"required,notblank,max=128"`
	Description string `json:"description" binding:"max=1024"`
}

type createProjectOut struct {
	Project *domain.Project `json:"project"`
	Role    domain.Role     `json:"role"`
}

type joinIn struct {
	UniqueCode string `json:"unique_code" binding:"required,notblank,max=16"`
}

func (h *Projects) MountAPI(api *gin.RouterGroup) {
	e := h.authed(api, "/projects")

	ez.RegisterAction(e, ez.Action[createProjectIn, createProjectOut]{
		Method: http.MethodPost,
		Path:   "/create",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *createProjectIn) (createProjectOut, error) {
			p, err := h.Projects.Create(c.Request.Context(), mdw.UserID(c), in.Name, in.Description)
			if err != nil {
				return createProjectOut{}, err
			}
			return createProjectOut{Project: p, Role: domain.RoleAdmin}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[joinIn, service.JoinResult]{
		Method: http.MethodPost,
		Path:   "/join",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *joinIn) (service.JoinResult, error) {
			return h.Projects.Join(c.Request.Context(), mdw.UserID(c), in.UniqueCode)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []domain.Member]{
		Method: http.MethodGet,
		Path:   "/:projectId/members",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Member, error) {
			pid, err := ez.PathID(c, "projectId")
			if err != nil {
				return nil, err
			}
			return h.Projects.Members(c.Request.Context(), pid, mdw.UserID(c))
		},
	})
}
