package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JasjusSirsak/bolususu/internal/repo"
	"github.com/JasjusSirsak/bolususu/internal/service"
	"github.com/JasjusSirsak/bolususu/internal/transport/http/ez"
)

// Admin is the operator console. The admin engine mounts it behind a
// global-role check, so handlers do not re-check the caller.
type Admin struct {
	Base
	Users    *service.UserService
	Projects *service.ProjectRegistry
}

type pageQ struct {
	Offset int `form:"offset,default=0"`
	Limit  int `form:"limit,default=20"`
}

func (q pageQ) clamp() (int, int) {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q.Offset, q.Limit
}

type userListQ struct {
	pageQ
	Q           string `form:"q"`
	WithDeleted bool   `form:"with_deleted"`
}

type userRow struct {
	ID        uint       `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	Banned    bool       `json:"banned"`
}

type listOut[T any] struct {
	Total int64 `json:"total"`
	Items []T   `json:"items"`
}

func (h *Admin) MountAdmin(admin *gin.RouterGroup) {
	e := h.public(admin)

	ez.RegisterAction(e, ez.Action[userListQ, listOut[userRow]]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *userListQ) (listOut[userRow], error) {
			off, lim := in.clamp()
			us, total, err := h.Users.List(c.Request.Context(), repo.UserFilter{
				Offset: off, Limit: lim, Q: in.Q, WithDeleted: in.WithDeleted,
			})
			if err != nil {
				return listOut[userRow]{}, err
			}
			out := listOut[userRow]{Total: total, Items: make([]userRow, 0, len(us))}
			for _, u := range us {
				out.Items = append(out.Items, userRow{
					ID: u.ID, Email: u.Email, Name: u.FullName, Role: u.Role,
					LastLogin: u.LastLogin, CreatedAt: u.CreatedAt, Banned: u.DeletedAt.Valid,
				})
			}
			return out, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/users/:id/ban",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id, err := ez.PathID(c, "id")
			if err != nil {
				return nil, err
			}
			if err := h.Users.Ban(c.Request.Context(), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[pageQ, listOut[repo.ProjectStat]]{
		Method: http.MethodGet,
		Path:   "/projects",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *pageQ) (listOut[repo.ProjectStat], error) {
			off, lim := in.clamp()
			ps, total, err := h.Projects.ListAll(c.Request.Context(), off, lim)
			if err != nil {
				return listOut[repo.ProjectStat]{}, err
			}
			return listOut[repo.ProjectStat]{Total: total, Items: ps}, nil
		},
	})
}
