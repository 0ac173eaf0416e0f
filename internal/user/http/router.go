package http

import (
	"net/http"
	"strconv"

	authservice "github.com/glimmer-social/backend/internal/auth/service"
	"github.com/glimmer-social/backend/internal/common/constants"
	commonhttp "github.com/glimmer-social/backend/internal/common/http"
	"github.com/glimmer-social/backend/internal/common/jwtverify"
	"github.com/glimmer-social/backend/internal/common/logger"
	graphservice "github.com/glimmer-social/backend/internal/graph/service"
	notifrepo "github.com/glimmer-social/backend/internal/notification/repository"
	userrepo "github.com/glimmer-social/backend/internal/user/repository"
)

type profileUpdateRequest struct {
	Username *string `json:"username"`
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Bio      *string `json:"bio"`
	City     *string `json:"city"`
	From     *string `json:"from"`
	CoverURL *string `json:"coverPicture"`

	OldPassword *string `json:"oldPassword"`
	NewPassword *string `json:"newPassword"`
}

type Handler struct {
	users         userrepo.Repository
	graph         *graphservice.FollowGraph
	notifications notifrepo.Repository
	auth          *authservice.Service
	errors        *commonhttp.ErrorHandler
	log           *logger.Logger
}

func NewHandler(
	users userrepo.Repository,
	graph *graphservice.FollowGraph,
	notifications notifrepo.Repository,
	auth *authservice.Service,
	log *logger.Logger,
) http.Handler {
	h := &Handler{
		users:         users,
		graph:         graph,
		notifications: notifications,
		auth:          auth,
		errors:        commonhttp.NewErrorHandler(log),
		log:           log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/{id}", h.getUser)
	mux.HandleFunc("GET /users/{id}/followers", h.getFollowers)
	mux.HandleFunc("GET /users/{id}/followings", h.getFollowings)
	mux.HandleFunc("GET /users/{id}/suggestions", h.getSuggestions)
	mux.HandleFunc("GET /users/{id}/notifications", h.getNotifications)
	mux.HandleFunc("PATCH /users/{id}/{friendId}/follow", h.follow)
	mux.HandleFunc("PATCH /users/{id}/{friendId}/unfollow", h.unfollow)
	mux.HandleFunc("PATCH /users/{id}/{friendId}/followback", h.followBack)
	mux.HandleFunc("PUT /users/{id}", h.updateProfile)
	mux.HandleFunc("POST /users/{id}/picture", h.updatePicture)
	return mux
}

// requireSelf ensures the authenticated user is acting on their own account.
func (h *Handler) requireSelf(w http.ResponseWriter, r *http.Request, userID string) bool {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "missing authorization", nil, "")
		return false
	}
	if claims.UserID != userID {
		commonhttp.WriteErrorEnvelope(w, http.StatusForbidden, commonhttp.CodeForbidden, "cannot act for another user", nil, "")
		return false
	}
	return true
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, user.PublicView())
}

func (h *Handler) getFollowers(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	profiles, err := h.users.FindProfiles(r.Context(), user.Followers)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, profiles)
}

func (h *Handler) getFollowings(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	profiles, err := h.users.FindProfiles(r.Context(), user.Followings)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, profiles)
}

func (h *Handler) getSuggestions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed > constants.MaxSuggestionLimit {
			commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, "invalid limit", nil, "")
			return
		}
		limit = parsed
	}

	profiles, err := h.graph.Suggestions(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, profiles)
}

func (h *Handler) getNotifications(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if !h.requireSelf(w, r, userID) {
		return
	}

	notifications, err := h.notifications.ListByRecipient(r.Context(), userID)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, notifications)
}

func (h *Handler) follow(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if !h.requireSelf(w, r, userID) {
		return
	}

	relations, err := h.graph.Follow(r.Context(), userID, r.PathValue("friendId"))
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, relations)
}

func (h *Handler) unfollow(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if !h.requireSelf(w, r, userID) {
		return
	}

	relations, err := h.graph.Unfollow(r.Context(), userID, r.PathValue("friendId"))
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, relations)
}

func (h *Handler) followBack(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if !h.requireSelf(w, r, userID) {
		return
	}

	relations, err := h.graph.FollowBack(r.Context(), userID, r.PathValue("friendId"))
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, relations)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if !h.requireSelf(w, r, userID) {
		return
	}

	var req profileUpdateRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	view, err := h.auth.UpdateProfile(r.Context(), userID, authservice.ProfileUpdate{
		Username:    req.Username,
		Name:        req.Name,
		Email:       req.Email,
		Bio:         req.Bio,
		City:        req.City,
		From:        req.From,
		CoverURL:    req.CoverURL,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) updatePicture(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if !h.requireSelf(w, r, userID) {
		return
	}

	if err := r.ParseMultipartForm(constants.MaxUploadSizeBytes); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, "invalid multipart form", nil, "")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, "missing file field", nil, "")
		return
	}
	defer file.Close()

	url, err := h.auth.UpdateProfilePicture(r.Context(), userID, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, map[string]string{"profilePicture": url})
}
