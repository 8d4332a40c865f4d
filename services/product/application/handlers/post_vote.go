package handlers

import (
	"context"
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

// VoteResponse is returned after a vote.
type VoteResponse struct {
	httpx.ActionResult
	VoteCount int `json:"vote_count" example:"43"`
} // @name VoteResponse

type voteFunc func(ctx context.Context, caller auth.Caller, id uuid.UUID) (int, error)

// PostVoteHandler handles POST /products/{id}/upvote and /downvote requests.
// Repeated votes by the same caller are all counted; the route is rate limited per IP.
type PostVoteHandler struct {
	vote voteFunc
	log  logger.Logger
}

// NewUpvoteHandler returns a PostVoteHandler that adds a vote.
func NewUpvoteHandler(svc *appsvcs.Services, log logger.Logger) *PostVoteHandler {
	return &PostVoteHandler{vote: svc.Mutation.Upvote, log: log}
}

// NewDownvoteHandler returns a PostVoteHandler that removes a vote.
func NewDownvoteHandler(svc *appsvcs.Services, log logger.Logger) *PostVoteHandler {
	return &PostVoteHandler{vote: svc.Mutation.Downvote, log: log}
}

// Execute records the vote and returns the new count.
//
//	@Summary		Vote on a product
//	@Description	upvote adds one vote; downvote removes one, never going below zero.
//	@Tags			votes
//	@Produce		json
//	@Param			id	path		string	true	"Product ID"	format(uuid)
//	@Success		200	{object}	VoteResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		429	{object}	ErrorResponse
//	@Router			/products/{id}/upvote [post]
//	@Router			/products/{id}/downvote [post]
func (h *PostVoteHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		errhttp.WriteError(w, r, h.log, productdomain.ErrProductNotFound)
		return
	}

	n, err := h.vote(r.Context(), auth.CallerFromCtx(r.Context()), id)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, VoteResponse{
		ActionResult: httpx.Succeeded(appsvcs.MsgVoted),
		VoteCount:    n,
	})
}
