package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/showcase/pkg/auth"
	"github.com/ghuser/showcase/pkg/errhttp"
	"github.com/ghuser/showcase/pkg/httpx"
	"github.com/ghuser/showcase/pkg/logger"
	pkgvalidator "github.com/ghuser/showcase/pkg/validator"
	appsvcs "github.com/ghuser/showcase/services/product/application/services"
	productdomain "github.com/ghuser/showcase/services/product/domain"
)

// UpdateStatusRequest is the request body for PATCH /admin/products/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected" example:"approved"`
} // @name UpdateStatusRequest

// UpdateStatusResponse is returned after a status change.
type UpdateStatusResponse struct {
	httpx.ActionResult
	Product ProductResponse `json:"product"`
} // @name UpdateStatusResponse

// PatchStatusHandler handles PATCH /admin/products/{id}/status requests.
type PatchStatusHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewPatchStatusHandler returns a PatchStatusHandler backed by the given services.
func NewPatchStatusHandler(svc *appsvcs.Services, log logger.Logger) *PatchStatusHandler {
	return &PatchStatusHandler{svc: svc, log: log}
}

// Execute moves one product to a new status.
//
//	@Summary		Update product status
//	@Description	Approving stamps approved_at; moving away from approved keeps it.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Product ID"	format(uuid)
//	@Param			request	body		UpdateStatusRequest	true	"Target status"
//	@Success		200		{object}	UpdateStatusResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/admin/products/{id}/status [patch]
func (h *PatchStatusHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		errhttp.WriteError(w, r, h.log, productdomain.ErrProductNotFound)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpdateStatusRequest](w, r)
	if !ok {
		return
	}

	p, err := h.svc.Mutation.UpdateStatus(r.Context(), auth.CallerFromCtx(r.Context()), id, req.Status)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, UpdateStatusResponse{
		ActionResult: httpx.Succeeded(appsvcs.MsgStatusUpdated),
		Product:      toProductResponse(p),
	})
}
