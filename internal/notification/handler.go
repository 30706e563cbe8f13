package notification

import (
	"innovation-portal/internal/middleware"
	"innovation-portal/internal/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service   Service
	publisher *Publisher
}

func NewHandler(service Service, publisher *Publisher) *Handler {
	return &Handler{service: service, publisher: publisher}
}

func (h *Handler) List(c *gin.Context) {
	page, pageSize := utils.GetPaginationParams(c)

	rows, meta, unread, err := h.service.List(c.Request.Context(), middleware.CurrentUserID(c), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   rows,
		"meta":   meta,
		"unread": unread,
	})
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	n, err := h.service.MarkAllRead(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}
