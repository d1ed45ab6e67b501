package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/service"
	"finance-tracker/internal/transport/http/ez"
	mdw "finance-tracker/internal/transport/http/middleware"
)

type sessionOut struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    *domain.User `json:"user"`
}

type userOut struct {
	Success bool         `json:"success"`
	User    *domain.User `json:"user"`
}

type apiTokenOut struct {
	Success  bool   `json:"success"`
	APIToken string `json:"apiToken"`
}

type Auth struct{ svc *service.AuthService }

func NewAuth(svc *service.AuthService) *Auth { return &Auth{svc: svc} }

// MountPublic 注册 /auth/register、/auth/login（无需登录）
func (h *Auth) MountPublic(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[service.RegisterInput, sessionOut]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *service.RegisterInput) (sessionOut, error) {
			s, err := h.svc.Register(c.Request.Context(), *in)
			if err != nil {
				return sessionOut{}, err
			}
			return sessionOut{Success: true, Token: s.Token, User: s.User}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[service.LoginInput, sessionOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.LoginInput) (sessionOut, error) {
			s, err := h.svc.Login(c.Request.Context(), *in)
			if err != nil {
				return sessionOut{}, err
			}
			return sessionOut{Success: true, Token: s.Token, User: s.User}, nil
		},
	})
}

// MountAuthed 注册 /auth/profile、/auth/token；分组需已走 bearer 鉴权
func (h *Auth) MountAuthed(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[struct{}, userOut]{
		Method: http.MethodGet,
		Path:   "/auth/profile",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (userOut, error) {
			u, err := h.svc.Profile(c.Request.Context(), c.GetString(mdw.KeyUserID))
			if err != nil {
				return userOut{}, err
			}
			return userOut{Success: true, User: u}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, apiTokenOut]{
		Method: http.MethodPost,
		Path:   "/auth/token",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (apiTokenOut, error) {
			tok, err := h.svc.RotateAPIToken(c.Request.Context(), c.GetString(mdw.KeyUserID))
			if err != nil {
				return apiTokenOut{}, err
			}
			return apiTokenOut{Success: true, APIToken: tok}, nil
		},
	})
}
