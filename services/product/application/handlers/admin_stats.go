package handlers

import (
	"net/http"

	"github.com/ghuser/showcase/pkg/errhttp"
	"github.com/ghuser/showcase/pkg/httpx"
	"github.com/ghuser/showcase/pkg/logger"
	appsvcs "github.com/ghuser/showcase/services/product/application/services"
)

// StatsResponse holds product counts per status.
type StatsResponse struct {
	Total    int `json:"total"    example:"12"`
	Pending  int `json:"pending"  example:"3"`
	Approved int `json:"approved" example:"8"`
	Rejected int `json:"rejected" example:"1"`
} // @name StatsResponse

// CountResponse carries a single count.
type CountResponse struct {
	Count int `json:"count" example:"3"`
} // @name CountResponse

// TagsResponse lists tags.
type TagsResponse struct {
	Tags []string `json:"tags" example:"ai,devtools,go"`
} // @name TagsResponse

// AdminReadHandler serves the small admin dashboard reads.
type AdminReadHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewAdminReadHandler returns an AdminReadHandler backed by the given services.
func NewAdminReadHandler(svc *appsvcs.Services, log logger.Logger) *AdminReadHandler {
	return &AdminReadHandler{svc: svc, log: log}
}

// Stats returns counts per status.
//
//	@Summary	Moderation stats
//	@Tags		admin
//	@Produce	json
//	@Success	200	{object}	StatsResponse
//	@Failure	401	{object}	ErrorResponse
//	@Failure	403	{object}	ErrorResponse
//	@Router		/admin/stats [get]
func (h *AdminReadHandler) Stats(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Query.AdminStats(r.Context())
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, StatsResponse{Total: s.Total, Pending: s.Pending, Approved: s.Approved, Rejected: s.Rejected})
}

// PendingCount returns the number of products awaiting review.
//
//	@Summary	Pending count
//	@Tags		admin
//	@Produce	json
//	@Success	200	{object}	CountResponse
//	@Failure	401	{object}	ErrorResponse
//	@Failure	403	{object}	ErrorResponse
//	@Router		/admin/pending-count [get]
func (h *AdminReadHandler) PendingCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Query.PendingCount(r.Context())
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, CountResponse{Count: n})
}

// Tags returns every distinct tag, sorted.
//
//	@Summary	All tags
//	@Tags		admin
//	@Produce	json
//	@Success	200	{object}	TagsResponse
//	@Failure	401	{object}	ErrorResponse
//	@Failure	403	{object}	ErrorResponse
//	@Router		/admin/tags [get]
func (h *AdminReadHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Query.AllTags(r.Context())
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, TagsResponse{Tags: tags})
}
