// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/livepoll/admission"
	"github.com/danielhkuo/livepoll/auth"
	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/models"
)

// VoteAdmitter decides vote attempts; *admission.Controller implements it
type VoteAdmitter interface {
	SubmitVote(ctx context.Context, pollID string, optionID int64, voterToken, sourceAddress string) (admission.Result, error)
}

type VotingHandler struct {
	controller VoteAdmitter
}

func NewVotingHandler(controller VoteAdmitter) *VotingHandler {
	return &VotingHandler{controller: controller}
}

// SubmitVote handles POST /api/polls/{id}/vote
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	hints, err := auth.ExtractHints(r, req.VoterToken)
	if err != nil {
		middleware.FieldErrorResponse(w, http.StatusBadRequest, err.Error(), "voterToken")
		return
	}

	res, err := h.controller.SubmitVote(r.Context(), pollID, req.OptionID, hints.VoterToken, hints.SourceAddress)
	if err != nil {
		var verr *admission.ValidationError
		switch {
		case errors.As(err, &verr):
			middleware.FieldErrorResponse(w, http.StatusBadRequest, verr.Message, verr.Field)
		case errors.Is(err, admission.ErrIntegrityViolation):
			middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "Vote could not be recorded consistently")
		default:
			slog.Error("vote submission failed", "poll_id", pollID, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	if !res.Accepted {
		switch res.Reason {
		case admission.ReasonNotFound:
			middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		case admission.ReasonInvalidOption:
			middleware.FieldErrorResponse(w, http.StatusBadRequest, "Invalid option for this poll", "optionId")
		case admission.ReasonDuplicate:
			middleware.ErrorResponse(w, http.StatusConflict, "You have already voted on this poll.")
		default:
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoteResponse{
		Success:  true,
		Message:  "Vote recorded",
		NewCount: res.NewCount,
	})
}
