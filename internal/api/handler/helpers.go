package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"coursehub/internal/api/middleware"
	"coursehub/internal/common"
	"coursehub/internal/platform/config"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return common.Validationf("request body is empty")
		}
		return common.Validationf("invalid request payload: %v", err)
	}
	return nil
}

// pagination reads page and page_size. Unparseable values fall back to the
// defaults and oversized pages are clamped.
func pagination(r *http.Request) common.Pagination {
	def, max := 12, 100
	if config.AppConfig != nil {
		def, max = config.AppConfig.DefaultPageSize, config.AppConfig.MaxPageSize
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	return common.NewPagination(page, size, def, max)
}

func viewer(r *http.Request) int64 {
	id, _ := middleware.GetUserIDFromContext(r.Context())
	return id
}

// principal is only called behind middleware.Authenticator.
func principal(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
	}
	return id, ok
}

func respondError(log *zap.SugaredLogger, w http.ResponseWriter, r *http.Request, err error) {
	if common.HTTPStatusFromError(err) >= http.StatusInternalServerError {
		log.Errorw("request failed",
			"request_id", chiMiddleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
	}
	common.RespondWithDomainError(w, err)
}
