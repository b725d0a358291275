// Package service composes the three role registries into the authorization
// facade external collaborators query. A proposal workflow, for example, must
// gate its state transitions on IsSuperAdmin/IsCouncil/IsCommon and never on
// the member lists, which exist for enumeration and count display only.
package service

import (
	"context"
	"log/slog"
	"sync"

	registrymetrics "concord/internal/registry/metrics"
	"concord/pkg/domain"
	dErrors "concord/pkg/domain-errors"
	audit "concord/pkg/platform/audit"
	"concord/pkg/requestcontext"
)

// AuditPublisher emits one event per committed mutation.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the composed role registry. The caller identity is read from the
// request context, never from request parameters; the auth middleware is the
// only writer of that value.
type Service struct {
	// commitMu spans each roster mutation and its trail append. The registry
	// locks alone are not enough: without this, two operations could commit
	// in one order and reach the trail in the other.
	commitMu sync.Mutex

	superAdmins *SuperAdminRegistry
	council     *RoleRegistry
	common      *RoleRegistry

	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *registrymetrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *registrymetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs the facade and seeds the bootstrap identity as the sole
// initial superadmin, emitting the corresponding SuperAdminAdded event. The
// seed is attributed to the bootstrap identity itself.
func New(bootstrap domain.Identity, opts ...Option) (*Service, error) {
	s := &Service{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	superAdmins, err := newSuperAdminRegistry(bootstrap)
	if err != nil {
		return nil, err
	}
	s.superAdmins = superAdmins
	s.council = newRoleRegistry(RoleCouncil, superAdmins)
	s.common = newRoleRegistry(RoleCommon, superAdmins)

	if err := s.emit(context.Background(), audit.EventSuperAdminAdded, bootstrap, bootstrap); err != nil {
		return nil, err
	}
	s.recordMutation(RoleSuperAdmin, "added", s.superAdmins.Count())
	return s, nil
}

// -----------------------------------------------------------------------------
// Membership predicates (the authoritative checks for collaborators)
// -----------------------------------------------------------------------------

func (s *Service) IsSuperAdmin(_ context.Context, identity domain.Identity) (bool, error) {
	return s.superAdmins.IsSuperAdmin(identity)
}

func (s *Service) IsCouncil(_ context.Context, identity domain.Identity) (bool, error) {
	return s.council.Is(identity)
}

func (s *Service) IsCommon(_ context.Context, identity domain.Identity) (bool, error) {
	return s.common.Is(identity)
}

// -----------------------------------------------------------------------------
// Enumeration and counts (display only, never authorization)
// -----------------------------------------------------------------------------

func (s *Service) SuperAdminCount(_ context.Context) int { return s.superAdmins.Count() }
func (s *Service) CouncilCount(_ context.Context) int    { return s.council.Count() }
func (s *Service) CommonCount(_ context.Context) int     { return s.common.Count() }

func (s *Service) SuperAdmins(_ context.Context) []domain.Identity { return s.superAdmins.Members() }
func (s *Service) CouncilMembers(_ context.Context) []domain.Identity {
	return s.council.Members()
}
func (s *Service) CommonMembers(_ context.Context) []domain.Identity { return s.common.Members() }

// Snapshot reports current member counts per role for health and ops surfaces.
type Snapshot struct {
	SuperAdmins int `json:"superadmins"`
	Council     int `json:"council"`
	Common      int `json:"common"`
}

func (s *Service) Snapshot(_ context.Context) Snapshot {
	return Snapshot{
		SuperAdmins: s.superAdmins.Count(),
		Council:     s.council.Count(),
		Common:      s.common.Count(),
	}
}

// -----------------------------------------------------------------------------
// Gated mutations
// -----------------------------------------------------------------------------

// AddSuperAdmin grants the superadmin role to identity. The caller must
// already hold it.
func (s *Service) AddSuperAdmin(ctx context.Context, identity domain.Identity) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return err
	}
	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	if err := s.superAdmins.Add(caller, identity); err != nil {
		return err
	}
	if err := s.emit(ctx, audit.EventSuperAdminAdded, identity, caller); err != nil {
		return err
	}
	s.recordMutation(RoleSuperAdmin, "added", s.superAdmins.Count())
	return nil
}

// RenounceSuperAdmin removes the caller from the superadmin set. Self-removal
// only; fails with CodeLastAdminGuard when the caller is the last superadmin.
func (s *Service) RenounceSuperAdmin(ctx context.Context) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return err
	}
	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	if err := s.superAdmins.Renounce(caller); err != nil {
		return err
	}
	if err := s.emit(ctx, audit.EventSuperAdminRemoved, caller, caller); err != nil {
		return err
	}
	s.recordMutation(RoleSuperAdmin, "removed", s.superAdmins.Count())
	return nil
}

// AddCouncil grants the council role to identity.
func (s *Service) AddCouncil(ctx context.Context, identity domain.Identity) error {
	return s.mutateRole(ctx, s.council, audit.EventCouncilAdded, "added", identity, (*RoleRegistry).Add)
}

// RemoveCouncil revokes the council role from identity.
func (s *Service) RemoveCouncil(ctx context.Context, identity domain.Identity) error {
	return s.mutateRole(ctx, s.council, audit.EventCouncilRemoved, "removed", identity, (*RoleRegistry).Remove)
}

// AddCommon grants the common role to identity.
func (s *Service) AddCommon(ctx context.Context, identity domain.Identity) error {
	return s.mutateRole(ctx, s.common, audit.EventCommonAdded, "added", identity, (*RoleRegistry).Add)
}

// RemoveCommon revokes the common role from identity.
func (s *Service) RemoveCommon(ctx context.Context, identity domain.Identity) error {
	return s.mutateRole(ctx, s.common, audit.EventCommonRemoved, "removed", identity, (*RoleRegistry).Remove)
}

func (s *Service) mutateRole(
	ctx context.Context,
	registry *RoleRegistry,
	action audit.AuditEvent,
	verb string,
	identity domain.Identity,
	op func(*RoleRegistry, domain.Identity, domain.Identity) error,
) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return err
	}
	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	if err := op(registry, caller, identity); err != nil {
		return err
	}
	if err := s.emit(ctx, action, identity, caller); err != nil {
		return err
	}
	s.recordMutation(registry.role, verb, registry.Count())
	return nil
}

// -----------------------------------------------------------------------------
// Internals
// -----------------------------------------------------------------------------

// caller resolves the acting identity from the request context. An absent
// caller is an authorization failure; gated operations never run unattributed.
func (s *Service) caller(ctx context.Context) (domain.Identity, error) {
	caller := requestcontext.CallerID(ctx)
	if caller.IsZero() {
		return domain.NilIdentity, dErrors.New(dErrors.CodeUnauthorized, "caller identity required")
	}
	return caller, nil
}

// emit publishes the audit event for a committed mutation. Audit is
// fail-closed: if the trail cannot record the mutation, the operation reports
// failure to the caller.
func (s *Service) emit(ctx context.Context, action audit.AuditEvent, identity, actor domain.Identity) error {
	if s.auditPublisher == nil {
		return nil
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:   string(action),
		Identity: identity,
		ActorID:  actor,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", string(action),
			"identity", identity.String(),
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}

func (s *Service) recordMutation(role Role, action string, count int) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementMutation(string(role), action)
	s.metrics.SetMembers(string(role), count)
}
