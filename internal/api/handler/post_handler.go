package handler

import (
	"net/http"

	"coursehub/internal/api/middleware"
	"coursehub/internal/app/service"
	"coursehub/internal/common"
	"coursehub/internal/domain/model"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PostHandler struct {
	postService *service.PostService
	likeService *service.LikeService
	log         *zap.SugaredLogger
}

func NewPostHandler(ps *service.PostService, ls *service.LikeService, log *zap.SugaredLogger) *PostHandler {
	return &PostHandler{postService: ps, likeService: ls, log: log}
}

func (h *PostHandler) RegisterRoutes(r chi.Router) {
	// Anonymous readers are allowed; a valid token fills isLiked.
	r.Group(func(public chi.Router) {
		public.Use(middleware.OptionalAuthenticator)
		public.Get("/", h.listPosts)
		public.Get("/{postID}", h.getPost)
	})

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Post("/", h.createPost)
		authed.Patch("/{postID}", h.updatePost)
		authed.Delete("/{postID}", h.deletePost)
		authed.Post("/{postID}/like", h.likePost)
		authed.Post("/{postID}/unlike", h.unlikePost)
	})
}

func (h *PostHandler) listPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.PostFilter{
		Search: q.Get("search"),
		Tag:    q.Get("tag"),
		Viewer: viewer(r),
	}
	page, err := h.postService.ListPosts(r.Context(), filter, pagination(r))
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, page)
}

func (h *PostHandler) getPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.postService.GetPost(r.Context(), chi.URLParam(r, "postID"), viewer(r))
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, post)
}

func (h *PostHandler) createPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	var req service.CreatePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.log, w, r, err)
		return
	}
	post, err := h.postService.CreatePost(r.Context(), userID, req)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, post)
}

func (h *PostHandler) updatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	var req service.UpdatePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.log, w, r, err)
		return
	}
	post, err := h.postService.UpdatePost(r.Context(), userID, chi.URLParam(r, "postID"), req)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, post)
}

func (h *PostHandler) deletePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.postService.DeletePost(r.Context(), userID, chi.URLParam(r, "postID")); err != nil {
		respondError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PostHandler) likePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	post, err := h.likeService.Like(r.Context(), chi.URLParam(r, "postID"), userID)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, post)
}

func (h *PostHandler) unlikePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	post, err := h.likeService.Unlike(r.Context(), chi.URLParam(r, "postID"), userID)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, post)
}
