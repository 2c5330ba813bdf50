package handler

import (
	"net/http"

	"coursehub/internal/api/middleware"
	"coursehub/internal/app/service"
	"coursehub/internal/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReplyHandler struct {
	replyService *service.ReplyService
	log          *zap.SugaredLogger
}

func NewReplyHandler(rs *service.ReplyService, log *zap.SugaredLogger) *ReplyHandler {
	return &ReplyHandler{replyService: rs, log: log}
}

func (h *ReplyHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listReplies) // GET /api/replies?review={uuid}
	r.Get("/{replyID}", h.getReply)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Post("/", h.createReply)
		authed.Patch("/{replyID}", h.updateReply)
		authed.Delete("/{replyID}", h.deleteReply)
	})
}

func (h *ReplyHandler) listReplies(w http.ResponseWriter, r *http.Request) {
	page, err := h.replyService.ListReplies(r.Context(), r.URL.Query().Get("review"), pagination(r))
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, page)
}

func (h *ReplyHandler) getReply(w http.ResponseWriter, r *http.Request) {
	reply, err := h.replyService.GetReply(r.Context(), chi.URLParam(r, "replyID"))
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, reply)
}

func (h *ReplyHandler) createReply(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	var req service.CreateReplyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.log, w, r, err)
		return
	}
	reply, err := h.replyService.CreateReply(r.Context(), userID, req)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, reply)
}

func (h *ReplyHandler) updateReply(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	var req service.UpdateReplyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.log, w, r, err)
		return
	}
	reply, err := h.replyService.UpdateReply(r.Context(), userID, chi.URLParam(r, "replyID"), req)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, reply)
}

func (h *ReplyHandler) deleteReply(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.replyService.DeleteReply(r.Context(), userID, chi.URLParam(r, "replyID")); err != nil {
		respondError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
