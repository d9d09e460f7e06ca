package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"adjudicator/internal/adjudication"
	"adjudicator/internal/claims/models"
	dErrors "adjudicator/pkg/domain-errors"
	"adjudicator/pkg/platform/httputil"
	"adjudicator/pkg/requestcontext"
)

// Service defines the claim operations the handler exposes.
type Service interface {
	Adjudicate(ctx context.Context, intake adjudication.ClaimIntake) (*models.ClaimRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*models.ClaimRecord, error)
	ListByMember(ctx context.Context, memberID string) ([]*models.ClaimRecord, error)
}

// Handler wires claim endpoints to the claims service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts claim endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/claims/adjudicate", h.HandleAdjudicate)
	r.Get("/claims/{claimID}", h.HandleGetClaim)
	r.Get("/members/{memberID}/claims", h.HandleListMemberClaims)
}

// HandleAdjudicate handles POST /claims/adjudicate.
func (h *Handler) HandleAdjudicate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[AdjudicateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.service.Adjudicate(ctx, req.Intake())
	if err != nil {
		h.logger.ErrorContext(ctx, "claim adjudication failed",
			"request_id", requestID,
			"member_id", req.MemberID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "claim decided",
		"request_id", requestID,
		"claim_id", record.ID,
		"decision", record.Decision(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, toClaimResponse(record))
}

// HandleGetClaim handles GET /claims/{claimID}.
func (h *Handler) HandleGetClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	claimID, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "claimID")))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "claim id must be a UUID"))
		return
	}

	record, err := h.service.Get(ctx, claimID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to load claim",
				"request_id", requestID,
				"claim_id", claimID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toClaimResponse(record))
}

// HandleListMemberClaims handles GET /members/{memberID}/claims.
func (h *Handler) HandleListMemberClaims(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	memberID := strings.TrimSpace(chi.URLParam(r, "memberID"))

	records, err := h.service.ListByMember(ctx, memberID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to list member claims",
			"request_id", requestID,
			"member_id", memberID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toClaimListResponse(memberID, records))
}
