package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/transport/http/ez"
	resp "finance-tracker/internal/transport/http/response"
)

// Pinger 探测存储是否可用
type Pinger func(ctx context.Context) error

type statusOut struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message"`
	Env      string    `json:"env"`
	Database string    `json:"database"`
	Time     time.Time `json:"timestamp"`
}

type Meta struct {
	env  string
	ping Pinger
}

func NewMeta(env string, ping Pinger) *Meta { return &Meta{env: env, ping: ping} }

func (h *Meta) Mount(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[struct{}, resp.Resp]{
		Method: http.MethodGet,
		Path:   "/categories",
		Binder: ez.BindNone,
		Handler: func(*gin.Context, *struct{}) (resp.Resp, error) {
			return resp.OK(domain.Categories()), nil
		},
	})

	// /status 总是 200；数据库不可达时 database=disconnected
	ez.RegisterAction(e, ez.Action[struct{}, statusOut]{
		Method: http.MethodGet,
		Path:   "/status",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (statusOut, error) {
			out := statusOut{Success: true, Message: "server is running", Env: h.env, Database: "connected", Time: time.Now().UTC()}
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if h.ping == nil || h.ping(ctx) != nil {
				out.Database = "disconnected"
			}
			return out, nil
		},
	})
}
