package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ghuser/showcase/pkg/auth"
	"github.com/ghuser/showcase/pkg/errhttp"
	"github.com/ghuser/showcase/pkg/httpx"
	"github.com/ghuser/showcase/pkg/logger"
	pkgvalidator "github.com/ghuser/showcase/pkg/validator"
	appsvcs "github.com/ghuser/showcase/services/product/application/services"
)

// BulkStatusRequest is the request body for POST /admin/products/status.
type BulkStatusRequest struct {
	IDs    []string `json:"ids"    validate:"required,min=1,max=100,dive,uuid" example:"123e4567-e89b-12d3-a456-426614174000"`
	Status string   `json:"status" validate:"required,oneof=pending approved rejected" example:"rejected"`
} // @name BulkStatusRequest

// BulkStatusResponse reports the outcome per product.
type BulkStatusResponse struct {
	httpx.ActionResult
	Results appsvcs.BatchResult `json:"results"`
} // @name BulkStatusResponse

// PostBulkStatusHandler handles POST /admin/products/status requests.
type PostBulkStatusHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewPostBulkStatusHandler returns a PostBulkStatusHandler backed by the given services.
func NewPostBulkStatusHandler(svc *appsvcs.Services, log logger.Logger) *PostBulkStatusHandler {
	return &PostBulkStatusHandler{svc: svc, log: log}
}

// Execute applies one status to many products. Each product is updated on its
// own; success is false when any of them failed and results names which.
//
//	@Summary	Bulk update status
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Param		request	body		BulkStatusRequest	true	"Products and target status"
//	@Success	200		{object}	BulkStatusResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Failure	403		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/admin/products/status [post]
func (h *PostBulkStatusHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[BulkStatusRequest](w, r)
	if !ok {
		return
	}
	ids := make([]uuid.UUID, len(req.IDs))
	for i, s := range req.IDs {
		ids[i] = uuid.MustParse(s) // validated above
	}

	res, err := h.svc.Mutation.BulkUpdateStatus(r.Context(), auth.CallerFromCtx(r.Context()), ids, req.Status)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	result := httpx.Succeeded(appsvcs.MsgBulkUpdated)
	if !res.OK() {
		result = httpx.ActionResult{Message: "Some products could not be updated"}
	}
	httpx.JSON(w, http.StatusOK, BulkStatusResponse{ActionResult: result, Results: res})
}
