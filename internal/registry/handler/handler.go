package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"concord/internal/platform/middleware"
	"concord/internal/transport/http/shared"
	"concord/pkg/domain"
	dErrors "concord/pkg/domain-errors"
	audit "concord/pkg/platform/audit"
)

// Service defines the registry operations the transport needs.
type Service interface {
	IsSuperAdmin(ctx context.Context, identity domain.Identity) (bool, error)
	IsCouncil(ctx context.Context, identity domain.Identity) (bool, error)
	IsCommon(ctx context.Context, identity domain.Identity) (bool, error)

	SuperAdminCount(ctx context.Context) int
	CouncilCount(ctx context.Context) int
	CommonCount(ctx context.Context) int

	SuperAdmins(ctx context.Context) []domain.Identity
	CouncilMembers(ctx context.Context) []domain.Identity
	CommonMembers(ctx context.Context) []domain.Identity

	AddSuperAdmin(ctx context.Context, identity domain.Identity) error
	RenounceSuperAdmin(ctx context.Context) error
	AddCouncil(ctx context.Context, identity domain.Identity) error
	RemoveCouncil(ctx context.Context, identity domain.Identity) error
	AddCommon(ctx context.Context, identity domain.Identity) error
	RemoveCommon(ctx context.Context, identity domain.Identity) error
}

// AuditReader exposes the ordered audit trail read model.
type AuditReader interface {
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

// Handler handles the role registry endpoints.
type Handler struct {
	logger       *slog.Logger
	registry     Service
	auditTrail   AuditReader
	jwtValidator middleware.JWTValidator
	revocation   middleware.TokenRevocationChecker
}

// New creates a new registry Handler.
func New(
	registry Service,
	auditTrail AuditReader,
	logger *slog.Logger,
	jwtValidator middleware.JWTValidator,
	revocation middleware.TokenRevocationChecker,
) *Handler {
	return &Handler{
		logger:       logger,
		registry:     registry,
		auditTrail:   auditTrail,
		jwtValidator: jwtValidator,
		revocation:   revocation,
	}
}

// Register registers the registry routes with the chi router. Every route
// runs behind RequireAuth; mutations are additionally gated inside the
// service against the superadmin roster, never against transport state.
func (h *Handler) Register(r chi.Router) {
	registryRouter := chi.NewRouter()
	registryRouter.Use(middleware.Timeout(30 * time.Second))
	registryRouter.Use(middleware.ContentTypeJSON)
	registryRouter.Use(middleware.RequireAuth(h.jwtValidator, h.revocation, h.logger))

	registryRouter.Get("/registry/roles/{identity}", h.handleRoleFlags)

	registryRouter.Get("/registry/superadmins", h.handleListSuperAdmins)
	registryRouter.Get("/registry/superadmins/count", h.handleCountSuperAdmins)
	registryRouter.Post("/registry/superadmins", h.handleAddSuperAdmin)
	registryRouter.Delete("/registry/superadmins/me", h.handleRenounceSuperAdmin)

	registryRouter.Get("/registry/council", h.handleListCouncil)
	registryRouter.Get("/registry/council/count", h.handleCountCouncil)
	registryRouter.Post("/registry/council", h.handleAddCouncil)
	registryRouter.Delete("/registry/council/{identity}", h.handleRemoveCouncil)

	registryRouter.Get("/registry/common", h.handleListCommon)
	registryRouter.Get("/registry/common/count", h.handleCountCommon)
	registryRouter.Post("/registry/common", h.handleAddCommon)
	registryRouter.Delete("/registry/common/{identity}", h.handleRemoveCommon)

	registryRouter.Get("/registry/audit", h.handleAuditTrail)

	r.Mount("/", registryRouter)
}

// handleRoleFlags reports all three role predicates for one identity.
func (h *Handler) handleRoleFlags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := domain.ParseIdentity(chi.URLParam(r, "identity"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	isSuperAdmin, err := h.registry.IsSuperAdmin(ctx, identity)
	if err != nil {
		h.writeServiceError(w, r, "role flags", err)
		return
	}
	isCouncil, err := h.registry.IsCouncil(ctx, identity)
	if err != nil {
		h.writeServiceError(w, r, "role flags", err)
		return
	}
	isCommon, err := h.registry.IsCommon(ctx, identity)
	if err != nil {
		h.writeServiceError(w, r, "role flags", err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, RoleFlagsResponse{
		Identity:   identity.String(),
		SuperAdmin: isSuperAdmin,
		Council:    isCouncil,
		Common:     isCommon,
	})
}

// -----------------------------------------------------------------------------
// SuperAdmin endpoints
// -----------------------------------------------------------------------------

func (h *Handler) handleListSuperAdmins(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, membersResponse("superadmin", h.registry.SuperAdmins(r.Context())))
}

func (h *Handler) handleCountSuperAdmins(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, CountResponse{Role: "superadmin", Count: h.registry.SuperAdminCount(r.Context())})
}

func (h *Handler) handleAddSuperAdmin(w http.ResponseWriter, r *http.Request) {
	h.handleAdd(w, r, "add superadmin", h.registry.AddSuperAdmin)
}

func (h *Handler) handleRenounceSuperAdmin(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.RenounceSuperAdmin(r.Context()); err != nil {
		h.writeServiceError(w, r, "renounce superadmin", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -----------------------------------------------------------------------------
// Council endpoints
// -----------------------------------------------------------------------------

func (h *Handler) handleListCouncil(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, membersResponse("council", h.registry.CouncilMembers(r.Context())))
}

func (h *Handler) handleCountCouncil(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, CountResponse{Role: "council", Count: h.registry.CouncilCount(r.Context())})
}

func (h *Handler) handleAddCouncil(w http.ResponseWriter, r *http.Request) {
	h.handleAdd(w, r, "add council member", h.registry.AddCouncil)
}

func (h *Handler) handleRemoveCouncil(w http.ResponseWriter, r *http.Request) {
	h.handleRemove(w, r, "remove council member", h.registry.RemoveCouncil)
}

// -----------------------------------------------------------------------------
// Common endpoints
// -----------------------------------------------------------------------------

func (h *Handler) handleListCommon(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, membersResponse("common", h.registry.CommonMembers(r.Context())))
}

func (h *Handler) handleCountCommon(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, CountResponse{Role: "common", Count: h.registry.CommonCount(r.Context())})
}

func (h *Handler) handleAddCommon(w http.ResponseWriter, r *http.Request) {
	h.handleAdd(w, r, "add common member", h.registry.AddCommon)
}

func (h *Handler) handleRemoveCommon(w http.ResponseWriter, r *http.Request) {
	h.handleRemove(w, r, "remove common member", h.registry.RemoveCommon)
}

// -----------------------------------------------------------------------------
// Audit endpoint
// -----------------------------------------------------------------------------

func (h *Handler) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	events, err := h.auditTrail.ListRecent(ctx, limit)
	if err != nil {
		h.writeServiceError(w, r, "list audit trail", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, auditResponse(events))
}

// -----------------------------------------------------------------------------
// Shared plumbing
// -----------------------------------------------------------------------------

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request, op string, add func(context.Context, domain.Identity) error) {
	ctx := r.Context()

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request"))
		return
	}
	identity, err := domain.ParseIdentity(req.Identity)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := add(ctx, identity); err != nil {
		h.writeServiceError(w, r, op, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request, op string, remove func(context.Context, domain.Identity) error) {
	ctx := r.Context()

	identity, err := domain.ParseIdentity(chi.URLParam(r, "identity"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := remove(ctx, identity); err != nil {
		h.writeServiceError(w, r, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	if dErrors.Is(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, "registry operation failed",
			"op", op,
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
	} else {
		h.logger.WarnContext(ctx, "registry operation rejected",
			"op", op,
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
	}
	shared.WriteError(w, err)
}
