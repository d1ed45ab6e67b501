package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/service"
	"finance-tracker/internal/transport/http/ez"
	mdw "finance-tracker/internal/transport/http/middleware"
	resp "finance-tracker/internal/transport/http/response"
)

type Admin struct{ svc *service.AuthService }

func NewAdmin(svc *service.AuthService) *Admin { return &Admin{svc: svc} }

type listUsersQ struct {
	Offset int    `form:"offset,default=0"`
	Limit  int    `form:"limit,default=20"`
	Q      string `form:"q"` // 按 email/name 模糊搜
}

// 管理端不输出 apiToken
type userRow struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type listUsersOut struct {
	Success bool      `json:"success"`
	Total   int64     `json:"total"`
	Items   []userRow `json:"items"`
}

// Mount 注册 /users；分组需已走 bearer + admin 角色
func (h *Admin) Mount(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[listUsersQ, listUsersOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Roles:  []string{domain.RoleAdmin},
		Handler: func(c *gin.Context, in *listUsersQ) (listUsersOut, error) {
			us, total, err := h.svc.ListUsers(c.Request.Context(), in.Q, in.Offset, in.Limit)
			if err != nil {
				return listUsersOut{}, err
			}
			out := listUsersOut{Success: true, Total: total, Items: make([]userRow, 0, len(us))}
			for _, u := range us {
				out.Items = append(out.Items, userRow{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, CreatedAt: u.CreatedAt})
			}
			return out, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, resp.Resp]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: ez.BindNone,
		Roles:  []string{domain.RoleAdmin},
		Handler: func(c *gin.Context, _ *struct{}) (resp.Resp, error) {
			id := c.Param("id")
			if id == c.GetString(mdw.KeyUserID) {
				return resp.Resp{}, ez.BadRequest("cannot delete your own account")
			}
			if err := h.svc.DeleteUser(c.Request.Context(), id); err != nil {
				return resp.Resp{}, err
			}
			return resp.OK(gin.H{"id": id}), nil
		},
	})
}
