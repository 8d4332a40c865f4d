package handlers

import (
	"net/http"

	"github.com/ghuser/showcase/pkg/errhttp"
	"github.com/ghuser/showcase/pkg/httpx"
	"github.com/ghuser/showcase/pkg/logger"
	appsvcs "github.com/ghuser/showcase/services/product/application/services"
)

// ExploreResponse holds the first page of every discovery tab.
type ExploreResponse struct {
	All      PageResponse `json:"all"`
	Trending PageResponse `json:"trending"`
	Recent   PageResponse `json:"recent"`
} // @name ExploreResponse

// GetExploreHandler handles GET /explore requests.
type GetExploreHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewGetExploreHandler returns a GetExploreHandler backed by the given services.
func NewGetExploreHandler(svc *appsvcs.Services, log logger.Logger) *GetExploreHandler {
	return &GetExploreHandler{svc: svc, log: log}
}

// Execute returns the explore page sections. Clients load more of a tab with
// GET /products?view=...&offset=next_offset.
//
//	@Summary	Explore sections
//	@Tags		products
//	@Produce	json
//	@Success	200	{object}	ExploreResponse
//	@Router		/explore [get]
func (h *GetExploreHandler) Execute(w http.ResponseWriter, r *http.Request) {
	ex, err := h.svc.Query.Explore(r.Context())
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ExploreResponse{
		All:      toPageResponse(ex.All),
		Trending: toPageResponse(ex.Trending),
		Recent:   toPageResponse(ex.Recent),
	})
}
