package suggestion

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/suggestion"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/pkg/utils"
)

// Handler serves the starter prompts.
type Handler struct {
	prompts suggestion.Store
}

// New creates a suggestion handler.
func New(prompts suggestion.Store) *Handler {
	return &Handler{prompts: prompts}
}

// RegisterRoutes mounts the suggestion routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/suggestions", h.handleListSuggestions)
}

func (h *Handler) handleListSuggestions(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.prompts.List())
}
