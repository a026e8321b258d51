// File: internal/handlers/chat_handler.go
package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"personachat/internal/repository/bot"
	"personachat/internal/services/convo"
	"personachat/internal/services/marketplace"
)

// ChatHandler holds the dependencies for chat routes.
type ChatHandler struct {
	controller *convo.Controller
	market     *marketplace.Service
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(controller *convo.Controller, market *marketplace.Service) (*ChatHandler, error) {
	if controller == nil {
		return nil, fmt.Errorf("conversation controller is required")
	}
	if market == nil {
		return nil, fmt.Errorf("marketplace service is required")
	}
	return &ChatHandler{controller: controller, market: market}, nil
}

type createChatRequest struct {
	BotID     string `json:"bot_id"`
	ShareCode string `json:"share_code"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

// List returns the user's chats, most recently active first.
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	chats, err := h.controller.Chats(r.Context(), userID)
	if err != nil {
		log.Printf("Chat listing error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list chats")
		return
	}
	writeJSON(w, http.StatusOK, chats)
}

// Get returns one chat with its full message history.
func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	chat, err := h.controller.Chat(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, convo.ErrChatNotFound) {
			writeError(w, http.StatusNotFound, "chat not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load chat")
		return
	}
	writeJSON(w, http.StatusOK, chat)
}

// Create opens a chat with a bot, addressed by ID or share code. Opening a
// chat with a bot the user already talks to returns the existing chat.
func (h *ChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req createChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	botID := strings.TrimSpace(req.BotID)
	if botID == "" && strings.TrimSpace(req.ShareCode) != "" {
		resolved, codeErr := h.market.GetByShareCode(r.Context(), req.ShareCode, userID)
		if codeErr != nil {
			writeError(w, http.StatusNotFound, "bot not found")
			return
		}
		botID = resolved.ID
	}
	if botID == "" {
		writeError(w, http.StatusBadRequest, "bot_id or share_code is required")
		return
	}

	persona, err := h.market.GetBotForChat(r.Context(), botID)
	if err != nil {
		if errors.Is(err, bot.ErrBotNotFound) {
			writeError(w, http.StatusNotFound, "bot not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load bot")
		return
	}

	chat, existing, err := h.controller.CreateChat(r.Context(), userID, persona)
	if err != nil {
		log.Printf("Chat creation error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create chat")
		return
	}

	if !existing {
		if err := h.market.RecordChat(r.Context(), persona.ID); err != nil {
			log.Printf("Chat count increment error: %v", err)
		}
		writeJSON(w, http.StatusCreated, chat)
		return
	}
	writeJSON(w, http.StatusOK, chat)
}

// Delete removes one chat.
func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.controller.DeleteChat(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, convo.ErrChatNotFound) {
			writeError(w, http.StatusNotFound, "chat not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete chat")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// SendMessage runs one conversation turn and returns the persona's replies.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req sendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "message text is required")
		return
	}

	messages, err := h.controller.SendMessage(r.Context(), userID, mux.Vars(r)["id"], req.Text)
	if err != nil {
		var suspended *convo.SuspendedError
		switch {
		case errors.Is(err, convo.ErrBusy):
			writeError(w, http.StatusTooManyRequests, "hold on, still typing")
		case errors.As(err, &suspended):
			writeError(w, http.StatusForbidden,
				fmt.Sprintf("you're suspended for %d more minutes. chill.", suspended.RemainingMinutes()))
		case errors.Is(err, convo.ErrChatNotFound):
			writeError(w, http.StatusNotFound, "chat not found")
		default:
			log.Printf("Send message error: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to send message")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

// Profile returns the user's conversational profile.
func (h *ChatHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	profile, err := h.controller.Profile(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
