package services

import (
	"github.com/openbooks/bookkeeping_app/internal/core/domain"
	portsrepo "github.com/openbooks/bookkeeping_app/internal/core/ports/repositories"
	portssvc "github.com/openbooks/bookkeeping_app/internal/core/ports/services"
)

// ContainerOption configures the service container.
type ContainerOption func(*containerConfig)

type containerConfig struct {
	policy   domain.ApprovalPolicy
	events   portssvc.EventSink
	notifier portssvc.Notifier
}

// WithPolicy swaps the approval policy used by the entry service.
func WithPolicy(policy domain.ApprovalPolicy) ContainerOption {
	return func(c *containerConfig) { c.policy = policy }
}

// WithEventSink sets the audit event sink.
func WithEventSink(sink portssvc.EventSink) ContainerOption {
	return func(c *containerConfig) { c.events = sink }
}

// WithNotifier sets the review-outcome notifier.
func WithNotifier(n portssvc.Notifier) ContainerOption {
	return func(c *containerConfig) { c.notifier = n }
}

// NewServiceContainer wires all application services over the repository
// provider.
func NewServiceContainer(repos *portsrepo.RepositoryProvider, opts ...ContainerOption) *portssvc.ServiceContainer {
	cfg := containerConfig{policy: domain.RolePolicy{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &portssvc.ServiceContainer{
		Account: NewAccountService(repos.AccountRepo, repos.EntryRepo, cfg.events),
		Entry: NewEntryService(repos.EntryRepo, repos.AccountRepo, cfg.events, cfg.notifier,
			WithApprovalPolicy(cfg.policy)),
		Statement: NewStatementService(repos.AccountRepo),
	}
}
