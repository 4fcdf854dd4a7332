package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"nutriboard-backend/internal/models"
	"nutriboard-backend/internal/services"
)

type ChatHandler struct {
	resolver *services.ChatResolver
	endpoint string
}

// NewChatHandler answers chat messages through resolver. An empty endpoint
// means no chatbot webhook is configured.
func NewChatHandler(resolver *services.ChatResolver, endpoint string) *ChatHandler {
	return &ChatHandler{
		resolver: resolver,
		endpoint: endpoint,
	}
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message is required", r))
		return
	}

	res := h.resolver.ResolveDetailed(r.Context(), req.Message, h.endpoint)

	resp := models.ChatResponse{
		Reply:   res.Reply,
		Source:  string(res.Source),
		Message: models.NewChatMessage(models.RoleAssistant, res.Reply),
	}
	if res.Failure != nil {
		resp.Failure = res.Failure.Kind.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ChatHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, services.Welcome())
}
