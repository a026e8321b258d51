// File: internal/handlers/bot_handler.go
package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"personachat/internal/domain"
	"personachat/internal/repository/bot"
	"personachat/internal/services/convo"
	"personachat/internal/services/marketplace"
)

// BotHandler holds the dependencies for bot CRUD and marketplace routes.
type BotHandler struct {
	market *marketplace.Service
	chats  *convo.Controller
}

// NewBotHandler creates a new BotHandler.
func NewBotHandler(market *marketplace.Service, chats *convo.Controller) *BotHandler {
	return &BotHandler{market: market, chats: chats}
}

type createBotRequest struct {
	RobloxUserID    int64  `json:"roblox_user_id"`
	RobloxUsername  string `json:"roblox_username"`
	RobloxAvatarURL string `json:"roblox_avatar_url"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	SystemPrompt    string `json:"system_prompt"`
	IsPublic        bool   `json:"is_public"`
}

type updateBotRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	SystemPrompt *string `json:"system_prompt"`
	IsPublic     *bool   `json:"is_public"`
}

type botWithStatus struct {
	domain.Bot
	ModerationStatus marketplace.ModerationStatus `json:"moderation_status"`
}

// Create handles new bot creation.
func (h *BotHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req createBotRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.market.CreateBot(r.Context(), userID, marketplace.CreateBotInput{
		RobloxUserID:    req.RobloxUserID,
		RobloxUsername:  req.RobloxUsername,
		RobloxAvatarURL: req.RobloxAvatarURL,
		Name:            req.Name,
		Description:     req.Description,
		SystemPrompt:    req.SystemPrompt,
		IsPublic:        req.IsPublic,
	})
	if err != nil {
		log.Printf("Bot creation error: %v", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, botWithStatus{Bot: *created, ModerationStatus: h.market.StatusFor(created)})
}

// ListMine returns the creator's bots with their moderation status.
func (h *BotHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	bots, err := h.market.OwnerBots(r.Context(), userID)
	if err != nil {
		log.Printf("Bot listing error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list bots")
		return
	}

	out := make([]botWithStatus, len(bots))
	for i := range bots {
		out[i] = botWithStatus{Bot: bots[i], ModerationStatus: h.market.StatusFor(&bots[i])}
	}
	writeJSON(w, http.StatusOK, out)
}

// Get returns one bot by ID, system prompt included only for the creator.
func (h *BotHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	b, err := h.market.GetBot(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		h.writeBotError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// GetByShareCode resolves a share code to its bot.
func (h *BotHandler) GetByShareCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	b, err := h.market.GetByShareCode(r.Context(), mux.Vars(r)["code"], userID)
	if err != nil {
		h.writeBotError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Update applies owner edits to a bot.
func (h *BotHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req updateBotRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.market.UpdateBot(r.Context(), userID, mux.Vars(r)["id"], marketplace.UpdateBotInput{
		Name:         req.Name,
		Description:  req.Description,
		SystemPrompt: req.SystemPrompt,
		IsPublic:     req.IsPublic,
	})
	if err != nil {
		if errors.Is(err, marketplace.ErrNotApproved) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		h.writeBotError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, botWithStatus{Bot: *updated, ModerationStatus: h.market.StatusFor(updated)})
}

// Delete removes an owned bot.
func (h *BotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	botID := mux.Vars(r)["id"]
	if err := h.market.DeleteBot(r.Context(), userID, botID); err != nil {
		h.writeBotError(w, err)
		return
	}
	// Chats do not outlive their bot.
	if err := h.chats.DeleteChatsForBot(r.Context(), userID, botID); err != nil {
		log.Printf("Chat cascade delete error: %v", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Marketplace lists approved public bots.
func (h *BotHandler) Marketplace(w http.ResponseWriter, r *http.Request) {
	bots, err := h.market.Marketplace(r.Context())
	if err != nil {
		log.Printf("Marketplace listing error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load marketplace")
		return
	}
	writeJSON(w, http.StatusOK, bots)
}

// Search finds approved public bots matching a query.
func (h *BotHandler) Search(w http.ResponseWriter, r *http.Request) {
	bots, err := h.market.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		log.Printf("Marketplace search error: %v", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, bots)
}

func (h *BotHandler) writeBotError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bot.ErrBotNotFound):
		writeError(w, http.StatusNotFound, "bot not found")
	case errors.Is(err, bot.ErrUnauthorizedAccess):
		writeError(w, http.StatusForbidden, "you do not own this bot")
	default:
		log.Printf("Bot handler error: %v", err)
		writeError(w, http.StatusInternalServerError, "something went wrong")
	}
}
