package handlers

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/Rajat-oss/GameHubBack/internal/chat"
	"github.com/Rajat-oss/GameHubBack/internal/models"
	"github.com/Rajat-oss/GameHubBack/internal/services"
	chatws "github.com/Rajat-oss/GameHubBack/internal/websocket"
	"github.com/Rajat-oss/GameHubBack/pkg/utils"
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type chatApplicationService interface {
	Send(ctx context.Context, input services.SendMessageInput) (*services.ChatDelivery, error)
	ListMessages(ctx context.Context, viewerID, peerID int64) ([]models.Message, error)
	ListRooms(ctx context.Context, userID int64) ([]models.RoomSummary, error)
	MarkSeen(ctx context.Context, userA, userB, viewerID int64) error
	PeerTyping(ctx context.Context, viewerID, peerID int64) bool
	Subscribe(ctx context.Context, userA, userB int64) *chat.MessageSubscription
	SubscribeTyping(ctx context.Context, viewerID, peerID int64) *chat.TypingSubscription
	TypingReporterFor(roomID string, userID int64) *chat.TypingReporter
}

type profileReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Profile, error)
}

type ChatHandler struct {
	service   chatApplicationService
	profiles  profileReader
	hub       *chatws.Hub
	jwtSecret string
}

func NewChatHandler(
	service chatApplicationService,
	profiles profileReader,
	hub *chatws.Hub,
	jwtSecret string,
) *ChatHandler {
	return &ChatHandler{
		service:   service,
		profiles:  profiles,
		hub:       hub,
		jwtSecret: jwtSecret,
	}
}

type sendMessageRequest struct {
	Body string `json:"body"`
}

func (h *ChatHandler) ListRooms(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	rooms, err := h.service.ListRooms(c.Context(), userID)
	if err != nil {
		return mapChatError(c, err)
	}

	return c.JSON(fiber.Map{"rooms": rooms})
}

func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	peerID, err := parsePeerID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid peer id"})
	}

	messages, err := h.service.ListMessages(c.Context(), userID, peerID)
	if err != nil {
		return mapChatError(c, err)
	}

	return c.JSON(fiber.Map{"messages": messages})
}

func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	peerID, err := parsePeerID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid peer id"})
	}

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	sender, peer, err := h.resolvePair(c.Context(), userID, peerID)
	if err != nil {
		return mapChatError(c, err)
	}

	delivery, err := h.service.Send(c.Context(), services.SendMessageInput{
		SenderID:     sender.UserID,
		ReceiverID:   peer.UserID,
		SenderName:   sender.DisplayName,
		ReceiverName: peer.DisplayName,
		SenderAvatar: sender.AvatarURL,
		Body:         req.Body,
	})
	if err != nil {
		return mapChatError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(delivery)
}

func (h *ChatHandler) MarkSeen(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	peerID, err := parsePeerID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid peer id"})
	}

	if err := h.service.MarkSeen(c.Context(), userID, peerID, userID); err != nil {
		return mapChatError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetTyping is the polling fallback for clients without a live
// websocket; connected clients receive typing frames instead.
func (h *ChatHandler) GetTyping(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	peerID, err := parsePeerID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid peer id"})
	}

	return c.JSON(fiber.Map{"typing": h.service.PeerTyping(c.Context(), userID, peerID)})
}

func (h *ChatHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "WebSocket upgrade required"})
	}

	claims, err := h.parseWSClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	c.Locals("user_id", claims.UserID)
	return c.Next()
}

func (h *ChatHandler) HandleWebSocket(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	userIDStr, _ := conn.Locals("user_id").(string)
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil || userID <= 0 {
		return
	}

	peerID, err := strconv.ParseInt(conn.Params("peerID"), 10, 64)
	if err != nil || peerID <= 0 || peerID == userID {
		return
	}

	viewer, peer, err := h.resolvePair(context.Background(), userID, peerID)
	if err != nil {
		log.Printf("chat websocket profile lookup for %d/%d: %v", userID, peerID, err)
		return
	}

	client := chatws.NewClient(h.hub, conn, userID)
	session := chatws.NewSession(client, h.service, viewer, peer)
	session.Run(context.Background())
}

func (h *ChatHandler) resolvePair(ctx context.Context, userID, peerID int64) (*models.Profile, *models.Profile, error) {
	viewer, err := h.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	peer, err := h.profiles.GetByUserID(ctx, peerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, services.ErrUserNotFound
		}
		return nil, nil, err
	}
	return viewer, peer, nil
}

func (h *ChatHandler) parseWSClaims(c *fiber.Ctx) (*utils.Claims, error) {
	tokenString := strings.TrimSpace(c.Query("token"))
	if tokenString == "" {
		authHeader := strings.TrimSpace(c.Get("Authorization"))
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
	}

	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	return utils.ValidateToken(tokenString, h.jwtSecret)
}

func parsePeerID(c *fiber.Ctx) (int64, error) {
	peerID, err := strconv.ParseInt(c.Params("peerID"), 10, 64)
	if err != nil || peerID <= 0 {
		return 0, strconv.ErrSyntax
	}
	return peerID, nil
}

func mapChatError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process chat request"})
	}
}
