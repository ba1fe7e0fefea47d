package authorization

import (
	"context"
	"errors"
)

const (
	ObjectControlCenter = "control_center"
	ObjectAuditLog      = "audit_log"
)

const (
	ActionControlCenterView = "control_center.view"
	ActionAuditLogView      = "audit_log.view"
)

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// Service gates access to admin surfaces. Identity itself comes from an
// external collaborator; this service only answers whether a resolved
// actor with a resolved role may act.
type Service interface {
	Authorize(ctx context.Context, actor, role, object, action string) error
}

var (
	ErrInvalidActor = errors.New("invalid_actor")
	ErrForbidden    = errors.New("forbidden")
)
