package http

import (
	"net/http"

	commonhttp "github.com/glimmer-social/backend/internal/common/http"
	"github.com/glimmer-social/backend/internal/common/jwtverify"
	"github.com/glimmer-social/backend/internal/common/logger"
	"github.com/glimmer-social/backend/internal/messaging/service"
)

type createConversationRequest struct {
	ReceiverID string `json:"receiverId"`
}

type postMessageRequest struct {
	ConversationID string `json:"conversationId"`
	Text           string `json:"text"`
}

type Handler struct {
	messaging *service.Service
	errors    *commonhttp.ErrorHandler
	log       *logger.Logger
}

// NewHandler registers the messaging routes. The "converstations" spelling is
// the path contract the clients were built against.
func NewHandler(messaging *service.Service, log *logger.Logger) http.Handler {
	h := &Handler{
		messaging: messaging,
		errors:    commonhttp.NewErrorHandler(log),
		log:       log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /converstations", h.createConversation)
	mux.HandleFunc("GET /converstations/{id}", h.getConversations)
	mux.HandleFunc("POST /messages", h.postMessage)
	mux.HandleFunc("GET /messages/{converstationId}", h.getMessages)
	return mux
}

func (h *Handler) claims(w http.ResponseWriter, r *http.Request) (jwtverify.Claims, bool) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "missing authorization", nil, "")
	}
	return claims, ok
}

func (h *Handler) createConversation(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	var req createConversationRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}
	if req.ReceiverID == "" {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, "receiverId is required", nil, "")
		return
	}

	conversation, err := h.messaging.GetOrCreate(r.Context(), claims.UserID, req.ReceiverID)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, conversation)
}

// getConversations lists all conversations the path user is a member of.
func (h *Handler) getConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.messaging.GetConversations(r.Context(), r.PathValue("id"))
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, conversations)
}

func (h *Handler) postMessage(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	var req postMessageRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	message, err := h.messaging.PostMessage(r.Context(), req.ConversationID, claims.UserID, req.Text)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusCreated, message)
}

func (h *Handler) getMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.messaging.GetMessages(r.Context(), r.PathValue("converstationId"))
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, messages)
}
