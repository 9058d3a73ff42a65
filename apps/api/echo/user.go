package echoapi

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/campus/core/information"
	"github.com/trezcool/campus/core/user"
)

// UserRep is the API representation of a user. Password is write-only.
type UserRep struct {
	URL         readOnly[string]     `json:"url"`
	ID          readOnly[int64]      `json:"id"`
	Email       string               `json:"email"`
	Name        string               `json:"name"`
	Password    string               `json:"password,omitempty"`
	IsActive    bool                 `json:"is_active"`
	IsStaff     bool                 `json:"is_staff"`
	IsSuperuser bool                 `json:"is_superuser"`
	DateJoined  readOnly[time.Time]  `json:"date_joined"`
	LastLogin   readOnly[*time.Time] `json:"last_login"`
}

func registerUserAPI(g *echo.Group, svc user.ServiceInterface, infoSvc *information.Service, m ...echo.MiddlewareFunc) {
	resource[user.User, UserRep]{
		name:  "user",
		query: svc.Query,
		get:   svc.GetByID,
		delete: func(ctx context.Context, id int64) error {
			return infoSvc.DeleteSource(ctx, id, svc.Delete)
		},
		render: renderUser,
		blank:  func(links) UserRep { return UserRep{IsActive: true} },
		save: func(ctx echo.Context, id int64, rep UserRep) (user.User, error) {
			if id == 0 {
				return svc.Create(ctx.Request().Context(), user.NewUser{
					Email:       rep.Email,
					Name:        rep.Name,
					Password:    rep.Password,
					IsActive:    rep.IsActive,
					IsStaff:     rep.IsStaff,
					IsSuperuser: rep.IsSuperuser,
				})
			}
			return svc.Update(ctx.Request().Context(), id, user.UpdateUser{
				Email:       rep.Email,
				Name:        rep.Name,
				Password:    rep.Password,
				IsActive:    rep.IsActive,
				IsStaff:     rep.IsStaff,
				IsSuperuser: rep.IsSuperuser,
			})
		},
	}.register(g, "/user", append(m, adminMiddleware())...)
}

func renderUser(l links, usr user.User) UserRep {
	return UserRep{
		URL:         ro(l.url(userRoute, usr.ID)),
		ID:          ro(usr.ID),
		Email:       usr.Email,
		Name:        usr.Name,
		IsActive:    usr.IsActive,
		IsStaff:     usr.IsStaff,
		IsSuperuser: usr.IsSuperuser,
		DateJoined:  ro(usr.DateJoined),
		LastLogin:   ro(usr.LastLogin),
	}
}
