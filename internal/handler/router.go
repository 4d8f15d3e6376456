package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/handler/chatbot"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/handler/gateway"
	suggestionHandler "github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/handler/suggestion"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/suggestion"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/pkg/logger"
	chatService "github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/service/chat"
	chatbotService "github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/service/chatbot"
)

// Dependencies are the services the HTTP surface exposes.
type Dependencies struct {
	Logger      *zap.Logger
	Suggestions suggestion.Store
	Chatbot     *chatbotService.Service
	Sessions    *chatService.Manager
	Dispatcher  *chatService.Dispatcher
	Promoter    *chatService.Promoter
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         600,
	}).Handler)

	r.MethodNotAllowed(chatbot.MethodNotAllowed)

	chatbotHandler := chatbot.New(deps.Chatbot, log)
	chatbotHandler.RegisterRoutes(r)

	r.Route("/api", func(api chi.Router) {
		chatbotHandler.RegisterRoutes(api)
		suggestionHandler.New(deps.Suggestions).RegisterRoutes(api)
		gateway.New(deps.Sessions, deps.Dispatcher, deps.Promoter, log).RegisterRoutes(api)
	})

	return r
}
