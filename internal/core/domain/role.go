package domain

// Role is the privilege tier supplied by the identity collaborator.
type Role string

const (
	RoleAccountant Role = "ACCOUNTANT"
	RoleManager    Role = "MANAGER"
	RoleAdmin      Role = "ADMIN"
)

// ApprovalPolicy decides which actors may approve entries and which actors'
// entries skip the PENDING state entirely. The state machine only consumes
// this interface, so the policy can be swapped without touching it.
type ApprovalPolicy interface {
	// CanApprove reports whether the role holds the approval capability.
	CanApprove(role Role) bool
	// AutoApproves reports whether entries created by the role are approved
	// (and posted) immediately on creation.
	AutoApproves(role Role) bool
}

// RolePolicy is the default policy: managers and administrators approve, and
// their own entries are auto-approved.
type RolePolicy struct{}

func (RolePolicy) CanApprove(role Role) bool {
	return role == RoleManager || role == RoleAdmin
}

func (RolePolicy) AutoApproves(role Role) bool {
	return role == RoleManager || role == RoleAdmin
}
