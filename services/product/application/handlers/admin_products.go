package handlers

import (
	"net/http"
	"strings"

	"github.com/ghuser/showcase/pkg/errhttp"
	"github.com/ghuser/showcase/pkg/httpx"
	"github.com/ghuser/showcase/pkg/logger"
	appsvcs "github.com/ghuser/showcase/services/product/application/services"
	"github.com/ghuser/showcase/services/product/domain/repositories"
)

// GetAdminProductsHandler handles GET /admin/products requests.
type GetAdminProductsHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewGetAdminProductsHandler returns a GetAdminProductsHandler backed by the given services.
func NewGetAdminProductsHandler(svc *appsvcs.Services, log logger.Logger) *GetAdminProductsHandler {
	return &GetAdminProductsHandler{svc: svc, log: log}
}

// Execute lists products of any status, newest first. All filters are optional
// and combine with AND.
//
//	@Summary	Search products
//	@Tags		admin
//	@Produce	json
//	@Param		status	query		string	false	"pending, approved or rejected"	Enums(pending, approved, rejected)
//	@Param		search	query		string	false	"Case-insensitive match on name, tagline or description"
//	@Param		tags	query		string	false	"Comma-separated; products with any of these tags"
//	@Param		limit	query		int		false	"Page size (1-100)"
//	@Param		offset	query		int		false	"Rows to skip"
//	@Success	200		{object}	PageResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Failure	403		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/admin/products [get]
func (h *GetAdminProductsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	page, err := httpx.ParsePage(r, appsvcs.DefaultAdminLimit)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	filter := appsvcs.AdminFilter{
		Status: q.Get("status"),
		Search: q.Get("search"),
		Tags:   repositories.SplitTags(strings.Join(q["tags"], ",")),
	}

	result, err := h.svc.Query.AdminProducts(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPageResponse(result))
}
