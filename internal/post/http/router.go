package http

import (
	"net/http"

	commonhttp "github.com/glimmer-social/backend/internal/common/http"
	"github.com/glimmer-social/backend/internal/common/jwtverify"
	"github.com/glimmer-social/backend/internal/common/logger"
	"github.com/glimmer-social/backend/internal/post/service"
)

type createPostRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl"`
}

type commentRequest struct {
	Text string `json:"text"`
}

type Handler struct {
	posts  *service.Service
	errors *commonhttp.ErrorHandler
	log    *logger.Logger
}

func NewHandler(posts *service.Service, log *logger.Logger) http.Handler {
	h := &Handler{
		posts:  posts,
		errors: commonhttp.NewErrorHandler(log),
		log:    log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /posts", h.getFeed)
	mux.HandleFunc("GET /posts/{userId}/posts", h.getUserPosts)
	mux.HandleFunc("POST /posts", h.createPost)
	mux.HandleFunc("PATCH /posts/{id}/like", h.likePost)
	mux.HandleFunc("POST /posts/{id}/comment", h.postComment)
	mux.HandleFunc("DELETE /posts/{postId}", h.deletePost)
	return mux
}

func (h *Handler) claims(w http.ResponseWriter, r *http.Request) (jwtverify.Claims, bool) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "missing authorization", nil, "")
	}
	return claims, ok
}

func (h *Handler) getFeed(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	feed, err := h.posts.GetFeed(r.Context(), claims.UserID)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, feed)
}

func (h *Handler) getUserPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.GetUserPosts(r.Context(), r.PathValue("userId"))
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, posts)
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	var req createPostRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	post, err := h.posts.CreatePost(r.Context(), claims.UserID, req.Content, req.ImageURL)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusCreated, post)
}

func (h *Handler) likePost(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	posts, err := h.posts.LikePost(r.Context(), r.PathValue("id"), claims.UserID)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, posts)
}

func (h *Handler) postComment(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	post, err := h.posts.PostComment(r.Context(), r.PathValue("id"), claims.UserID, req.Text)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, post)
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	if err := h.posts.DeletePost(r.Context(), r.PathValue("postId"), claims.UserID); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
