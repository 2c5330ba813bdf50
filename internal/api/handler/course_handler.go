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

type CourseHandler struct {
	courseService *service.CourseService
	log           *zap.SugaredLogger
}

func NewCourseHandler(cs *service.CourseService, log *zap.SugaredLogger) *CourseHandler {
	return &CourseHandler{courseService: cs, log: log}
}

func (h *CourseHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listCourses)
	r.Get("/{courseID}", h.getCourse)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Post("/", h.createCourse)
		authed.Patch("/{courseID}", h.updateCourse)
		authed.Delete("/{courseID}", h.deleteCourse)
	})
}

func courseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "courseID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.ErrNotFound
	}
	return id, nil
}

func (h *CourseHandler) listCourses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, _ := strconv.Atoi(q.Get("year"))
	filter := model.CourseFilter{
		Search:     q.Get("search"),
		Department: q.Get("department"),
		Semester:   model.Semester(q.Get("semester")),
		Year:       year,
	}
	page, err := h.courseService.ListCourses(r.Context(), filter, pagination(r))
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, page)
}

func (h *CourseHandler) getCourse(w http.ResponseWriter, r *http.Request) {
	id, err := courseID(r)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	course, err := h.courseService.GetCourse(r.Context(), id)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) createCourse(w http.ResponseWriter, r *http.Request) {
	var req service.CourseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.log, w, r, err)
		return
	}
	course, err := h.courseService.CreateCourse(r.Context(), req)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, course)
}

func (h *CourseHandler) updateCourse(w http.ResponseWriter, r *http.Request) {
	id, err := courseID(r)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	var req service.CourseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.log, w, r, err)
		return
	}
	course, err := h.courseService.UpdateCourse(r.Context(), id, req)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) deleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := courseID(r)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	if err := h.courseService.DeleteCourse(r.Context(), id); err != nil {
		respondError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
