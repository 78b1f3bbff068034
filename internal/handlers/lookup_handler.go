package handlers

import (
	"net/http"

	"github.com/anonto42/wingit/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// LookupHandler serves the post and reaction type tables
type LookupHandler struct {
	lookupRepository repositories.LookupRepository
}

func NewLookupHandler(repos *Repositories) *LookupHandler {
	return &LookupHandler{lookupRepository: repos.Lookups}
}

func (h *LookupHandler) RegisterLookupRoutes(g *echo.Group) {
	g.GET("/post-types", h.ListPostTypes)
	g.GET("/post-types/:id", h.GetPostType)
	g.GET("/reaction-types", h.ListReactionTypes)
	g.GET("/reaction-types/:id", h.GetReactionType)
}

func (h *LookupHandler) ListPostTypes(c echo.Context) error {
	types, err := h.lookupRepository.ListPostTypes()
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, types)
}

func (h *LookupHandler) GetPostType(c echo.Context) error {
	id, err := parseID(c, "id", "post type")
	if err != nil {
		return err
	}
	t, err := h.lookupRepository.GetPostType(id)
	if err != nil {
		return notFoundOr(err, "Post type not found")
	}
	return success(c, http.StatusOK, t)
}

func (h *LookupHandler) ListReactionTypes(c echo.Context) error {
	types, err := h.lookupRepository.ListReactionTypes()
	if err != nil {
		return internalError(err)
	}
	return success(c, http.StatusOK, types)
}

func (h *LookupHandler) GetReactionType(c echo.Context) error {
	id, err := parseID(c, "id", "reaction type")
	if err != nil {
		return err
	}
	t, err := h.lookupRepository.GetReactionType(id)
	if err != nil {
		return notFoundOr(err, "Reaction type not found")
	}
	return success(c, http.StatusOK, t)
}
