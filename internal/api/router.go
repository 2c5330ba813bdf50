package api

import (
	"net/http"
	"time"

	"coursehub/internal/api/handler"
	"coursehub/internal/api/middleware"
	"coursehub/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth    *handler.AuthHandler
	Course  *handler.CourseHandler
	Review  *handler.ReviewHandler
	Reply   *handler.ReplyHandler
	Post    *handler.PostHandler
	Comment *handler.CommentHandler
}

func NewRouter(h Handlers, log *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Puts the bearer token, if any, into the context. Route groups decide
	// whether it is required.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Route("/accounts", h.Auth.RegisterRoutes)
		api.Route("/courses", h.Course.RegisterRoutes)
		api.Route("/reviews", h.Review.RegisterRoutes)
		api.Route("/replies", h.Reply.RegisterRoutes)
		api.Route("/forum", func(forum chi.Router) {
			forum.Route("/posts", h.Post.RegisterRoutes)
			forum.Route("/comments", h.Comment.RegisterRoutes)
		})
	})

	return r
}
