package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/showcase/pkg/auth"
	"github.com/ghuser/showcase/pkg/errhttp"
	"github.com/ghuser/showcase/pkg/httpx"
	"github.com/ghuser/showcase/pkg/logger"
	appsvcs "github.com/ghuser/showcase/services/product/application/services"
)

// GetProductHandler handles GET /products/{slug} requests.
type GetProductHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewGetProductHandler returns a GetProductHandler backed by the given services.
func NewGetProductHandler(svc *appsvcs.Services, log logger.Logger) *GetProductHandler {
	return &GetProductHandler{svc: svc, log: log}
}

// Execute returns one product by slug. Products awaiting moderation are only
// visible to admins and to whoever submitted them.
//
//	@Summary	Get product
//	@Tags		products
//	@Produce	json
//	@Param		slug	path		string	true	"Product slug"
//	@Success	200		{object}	ProductResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/products/{slug} [get]
func (h *GetProductHandler) Execute(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	p, err := h.svc.Query.BySlug(r.Context(), auth.CallerFromCtx(r.Context()), slug)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProductResponse(p))
}
