package handlers

import (
	"net/http"

	"github.com/ghuser/showcase/pkg/errhttp"
	"github.com/ghuser/showcase/pkg/httpx"
	"github.com/ghuser/showcase/pkg/logger"
	appsvcs "github.com/ghuser/showcase/services/product/application/services"
)

// GetFeaturedHandler handles GET /products/featured requests.
type GetFeaturedHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewGetFeaturedHandler returns a GetFeaturedHandler backed by the given services.
func NewGetFeaturedHandler(svc *appsvcs.Services, log logger.Logger) *GetFeaturedHandler {
	return &GetFeaturedHandler{svc: svc, log: log}
}

// Execute returns the landing page selection.
//
//	@Summary		Featured products
//	@Description	The six most voted approved products
//	@Tags			products
//	@Produce		json
//	@Success		200	{array}	ProductResponse
//	@Router			/products/featured [get]
func (h *GetFeaturedHandler) Execute(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Query.Featured(r.Context())
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProductResponses(items))
}
