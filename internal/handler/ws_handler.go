package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/freka11/schoolday/internal/model"
	"github.com/freka11/schoolday/internal/service"
	"github.com/freka11/schoolday/internal/ws"
	"github.com/freka11/schoolday/pkg/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // In production, validate origin
	},
}

// WSHandler handles WebSocket connections
type WSHandler struct {
	hub           *ws.Hub
	conversations *service.ConversationService
	jwtManager    *auth.JWTManager
}

func NewWSHandler(hub *ws.Hub, conversations *service.ConversationService, jwtManager *auth.JWTManager) *WSHandler {
	return &WSHandler{
		hub:           hub,
		conversations: conversations,
		jwtManager:    jwtManager,
	}
}

// HandleWebSocket upgrades HTTP to WebSocket and manages the connection
// Client connects with: ws://host/ws?token=<jwt_token>
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	// Authenticate via query parameter (WebSocket can't use Authorization header)
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "Token required"})
		return
	}

	claims, err := h.jwtManager.ValidateToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "Invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := ws.NewClient(h.hub, conn, claims.UserID, claims.Name)
	h.hub.Register(client)

	log.Printf("✅ WS Connected: UserID=%s Name=%s", claims.UserID, claims.Name)

	go client.WritePump()
	go client.ReadPump(h.handleWSMessage)
}

// handleWSMessage processes incoming WebSocket messages from clients
func (h *WSHandler) handleWSMessage(client *ws.Client, event model.WSEvent) {
	log.Printf("📩 WS Received from %s (%s): %s", client.Name, client.UserID, event.Type)

	switch event.Type {
	case model.WSEventSubscribe:
		h.handleSubscribe(client, event)

	case model.WSEventUnsubscribe:
		h.hub.Unsubscribe(client)

	case model.WSEventRead:
		h.handleMarkRead(client, event)

	default:
		log.Printf("Unknown WebSocket event type: %s", event.Type)
	}
}

// handleSubscribe switches the client's live snapshot stream to another
// conversation after verifying membership
func (h *WSHandler) handleSubscribe(client *ws.Client, event model.WSEvent) {
	payload, ok := subscribePayload(event)
	if !ok {
		return
	}

	if _, _, err := h.conversations.Participant(payload.ConversationID, client.UserID); err != nil {
		log.Printf("Subscription to %s denied for %s: %v", payload.ConversationID, client.UserID, err)
		client.SendError(payload.ConversationID, "subscription denied")
		return
	}

	h.hub.Subscribe(client, payload.ConversationID)
}

// handleMarkRead marks the conversation read for the client's user
func (h *WSHandler) handleMarkRead(client *ws.Client, event model.WSEvent) {
	payload, ok := subscribePayload(event)
	if !ok {
		return
	}

	if err := h.conversations.MarkAsRead(payload.ConversationID, client.UserID); err != nil {
		log.Printf("Error marking %s read for %s: %v", payload.ConversationID, client.UserID, err)
		client.SendError(payload.ConversationID, "failed to mark read")
		return
	}

	h.hub.NotifyConversation(payload.ConversationID)
}

func subscribePayload(event model.WSEvent) (model.SubscribeEvent, bool) {
	payloadBytes, _ := json.Marshal(event.Payload)
	var payload model.SubscribeEvent
	if err := json.Unmarshal(payloadBytes, &payload); err != nil || payload.ConversationID == "" {
		return model.SubscribeEvent{}, false
	}
	return payload, true
}
