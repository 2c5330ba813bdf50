package handler

import (
	"net/http"
	"strconv"

	"coursehub/internal/api/middleware"
	"coursehub/internal/app/service"
	"coursehub/internal/common"
	"coursehub/internal/domain/model"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CommentHandler struct {
	commentService *service.CommentService
	log            *zap.SugaredLogger
}

func NewCommentHandler(cs *service.CommentService, log *zap.SugaredLogger) *CommentHandler {
	return &CommentHandler{commentService: cs, log: log}
}

func (h *CommentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listComments)
	r.Get("/{commentID}", h.getComment)
	r.Get("/{commentID}/thread_size", h.threadSize)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Post("/", h.createComment)
		authed.Patch("/{commentID}", h.updateComment)
		authed.Delete("/{commentID}", h.deleteComment)
	})
}

// commentFilter maps postId, parentId, mainCommentId and isMain onto a filter.
// All supplied conditions must hold.
func commentFilter(r *http.Request) (model.CommentFilter, error) {
	q := r.URL.Query()
	filter := model.CommentFilter{
		PostID:        q.Get("postId"),
		ParentID:      q.Get("parentId"),
		MainCommentID: q.Get("mainCommentId"),
	}
	if raw := q.Get("isMain"); raw != "" {
		isMain, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, common.Validationf("isMain must be true or false")
		}
		filter.OnlyMain = &isMain
	}
	return filter, nil
}

func (h *CommentHandler) listComments(w http.ResponseWriter, r *http.Request) {
	filter, err := commentFilter(r)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	page, err := h.commentService.ListComments(r.Context(), filter, pagination(r))
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, page)
}

func (h *CommentHandler) getComment(w http.ResponseWriter, r *http.Request) {
	comment, err := h.commentService.GetComment(r.Context(), chi.URLParam(r, "commentID"))
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) threadSize(w http.ResponseWriter, r *http.Request) {
	size, err := h.commentService.ThreadSize(r.Context(), chi.URLParam(r, "commentID"))
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, size)
}

func (h *CommentHandler) createComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	var req service.CreateCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.log, w, r, err)
		return
	}
	comment, err := h.commentService.CreateComment(r.Context(), userID, req)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) updateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	var req service.UpdateCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.log, w, r, err)
		return
	}
	comment, err := h.commentService.UpdateComment(r.Context(), userID, chi.URLParam(r, "commentID"), req)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) deleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.commentService.DeleteComment(r.Context(), userID, chi.URLParam(r, "commentID")); err != nil {
		respondError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
