package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/expofair/expofair-api/internal/api/handler/v1/response"
	"github.com/expofair/expofair-api/internal/notifier"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type EventsHandler struct {
	hub  *notifier.Hub
	uSvc UserService
}

func NewEventsHandler(hub *notifier.Hub, uSvc UserService) *EventsHandler {
	return &EventsHandler{
		hub:  hub,
		uSvc: uSvc,
	}
}

// HandleEventsFeed godoc
// @Summary      Subscribe to lifecycle events
// @Description  Upgrades to a WebSocket and streams application and payment lifecycle events. Brands receive events for their own applications; organisers and managers receive all of them.
// @Tags         events
// @Produce      json
// @Success      101  {string}  string  "Switching Protocols to WebSocket"
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events [get]
// @Security     BearerAuth
func (h *EventsHandler) HandleEventsFeed(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := notifier.NewClient(conn, user.ID, user.Role)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(func() {
		h.hub.Unregister(client)
	})
}
