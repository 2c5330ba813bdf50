package handler

import (
	"net/http"
	"strconv"

	"coursehub/internal/api/middleware"
	"coursehub/internal/app/service"
	"coursehub/internal/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
	log           *zap.SugaredLogger
}

func NewReviewHandler(rs *service.ReviewService, log *zap.SugaredLogger) *ReviewHandler {
	return &ReviewHandler{reviewService: rs, log: log}
}

func (h *ReviewHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listReviews) // GET /api/reviews?course=42
	r.Get("/{reviewID}", h.getReview)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Post("/", h.createReview)
		authed.Patch("/{reviewID}", h.updateReview)
		authed.Delete("/{reviewID}", h.deleteReview)
	})
}

func (h *ReviewHandler) listReviews(w http.ResponseWriter, r *http.Request) {
	var course int64
	if raw := r.URL.Query().Get("course"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(h.log, w, r, common.Validationf("course must be a course id"))
			return
		}
		course = id
	}
	page, err := h.reviewService.ListReviews(r.Context(), course, pagination(r))
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, page)
}

func (h *ReviewHandler) getReview(w http.ResponseWriter, r *http.Request) {
	review, err := h.reviewService.GetReview(r.Context(), chi.URLParam(r, "reviewID"))
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, review)
}

func (h *ReviewHandler) createReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	var req service.ReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.log, w, r, err)
		return
	}
	review, err := h.reviewService.CreateReview(r.Context(), userID, req)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, review)
}

func (h *ReviewHandler) updateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	var req service.ReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.log, w, r, err)
		return
	}
	review, err := h.reviewService.UpdateReview(r.Context(), userID, chi.URLParam(r, "reviewID"), req)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, review)
}

func (h *ReviewHandler) deleteReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.reviewService.DeleteReview(r.Context(), userID, chi.URLParam(r, "reviewID")); err != nil {
		respondError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
