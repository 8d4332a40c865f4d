package handlers

import (
	"net/http"

	"github.com/ghuser/showcase/pkg/errhttp"
	"github.com/ghuser/showcase/pkg/httpx"
	"github.com/ghuser/showcase/pkg/logger"
	appsvcs "github.com/ghuser/showcase/services/product/application/services"
)

// GetProductsHandler handles GET /products requests.
type GetProductsHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewGetProductsHandler returns a GetProductsHandler backed by the given services.
func NewGetProductsHandler(svc *appsvcs.Services, log logger.Logger) *GetProductsHandler {
	return &GetProductsHandler{svc: svc, log: log}
}

// Execute lists approved products.
//
//	@Summary		List products
//	@Description	Lists approved products. view=all and view=recent are newest first; view=trending ranks by votes, then recency.
//	@Tags			products
//	@Produce		json
//	@Param			view	query		string	false	"all, trending or recent"	Enums(all, trending, recent)
//	@Param			limit	query		int		false	"Page size (1-100)"
//	@Param			offset	query		int		false	"Rows to skip"
//	@Success		200		{object}	PageResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/products [get]
func (h *GetProductsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	view, err := appsvcs.ParseView(r.URL.Query().Get("view"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "Unknown view")
		return
	}
	page, err := httpx.ParsePage(r, view.DefaultLimit())
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Query.List(r.Context(), view, page.Limit, page.Offset)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPageResponse(result))
}
