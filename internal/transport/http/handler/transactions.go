package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finance-tracker/internal/service"
	"finance-tracker/internal/transport/http/ez"
	resp "finance-tracker/internal/transport/http/response"
)

const msgCreated = "transaction recorded"

type Transactions struct{ svc *service.TransactionService }

func NewTransactions(svc *service.TransactionService) *Transactions {
	return &Transactions{svc: svc}
}

// MountCreate 注册 POST /transactions；分组接受 bearer 或 X-API-Token
func (h *Transactions) MountCreate(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[service.TransactionInput, resp.Resp]{
		Method: http.MethodPost,
		Path:   "/transactions",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *service.TransactionInput) (resp.Resp, error) {
			t, err := h.svc.Create(c.Request.Context(), *in)
			if err != nil {
				return resp.Resp{}, err
			}
			return resp.Created(t, msgCreated), nil
		},
	})
}

// Mount 注册其余路由；分组只接受 bearer
func (h *Transactions) Mount(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[service.ListQuery, resp.Resp]{
		Method: http.MethodGet,
		Path:   "/transactions",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, q *service.ListQuery) (resp.Resp, error) {
			f, err := q.TransactionFilter()
			if err != nil {
				return resp.Resp{}, err
			}
			list, err := h.svc.List(c.Request.Context(), f)
			if err != nil {
				return resp.Resp{}, err
			}
			return resp.List(list, len(list)), nil
		},
	})

	// 静态路由 /transactions/summary 优先于 /transactions/:id
	ez.RegisterAction(e, ez.Action[service.ListQuery, resp.Resp]{
		Method: http.MethodGet,
		Path:   "/transactions/summary",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, q *service.ListQuery) (resp.Resp, error) {
			f, err := q.SummaryFilter()
			if err != nil {
				return resp.Resp{}, err
			}
			sum, err := h.svc.Summarize(c.Request.Context(), f)
			if err != nil {
				return resp.Resp{}, err
			}
			return resp.OK(sum), nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, resp.Resp]{
		Method: http.MethodGet,
		Path:   "/transactions/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Resp, error) {
			t, err := h.svc.Get(c.Request.Context(), c.Param("id"))
			if err != nil {
				return resp.Resp{}, err
			}
			return resp.OK(t), nil
		},
	})

	ez.RegisterAction(e, ez.Action[service.TransactionInput, resp.Resp]{
		Method: http.MethodPut,
		Path:   "/transactions/:id",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, patch *service.TransactionInput) (resp.Resp, error) {
			t, err := h.svc.Update(c.Request.Context(), c.Param("id"), *patch)
			if err != nil {
				return resp.Resp{}, err
			}
			return resp.OK(t), nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, resp.Resp]{
		Method: http.MethodDelete,
		Path:   "/transactions/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Resp, error) {
			id := c.Param("id")
			if err := h.svc.Delete(c.Request.Context(), id); err != nil {
				return resp.Resp{}, err
			}
			return resp.OK(gin.H{"id": id}), nil
		},
	})
}
