package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/showcase/pkg/auth"
	"github.com/ghuser/showcase/pkg/errhttp"
	"github.com/ghuser/showcase/pkg/httpx"
	"github.com/ghuser/showcase/pkg/logger"
	appsvcs "github.com/ghuser/showcase/services/product/application/services"
	productdomain "github.com/ghuser/showcase/services/product/domain"
)

// DeleteProductHandler handles DELETE /admin/products/{id} requests.
type DeleteProductHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewDeleteProductHandler returns a DeleteProductHandler backed by the given services.
func NewDeleteProductHandler(svc *appsvcs.Services, log logger.Logger) *DeleteProductHandler {
	return &DeleteProductHandler{svc: svc, log: log}
}

// Execute permanently removes a product.
//
//	@Summary	Delete product
//	@Tags		admin
//	@Produce	json
//	@Param		id	path		string	true	"Product ID"	format(uuid)
//	@Success	200	{object}	httpx.ActionResult
//	@Failure	401	{object}	ErrorResponse
//	@Failure	403	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/admin/products/{id} [delete]
func (h *DeleteProductHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		errhttp.WriteError(w, r, h.log, productdomain.ErrProductNotFound)
		return
	}
	if err := h.svc.Mutation.DeleteProduct(r.Context(), auth.CallerFromCtx(r.Context()), id); err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Succeeded(appsvcs.MsgDeleted))
}
