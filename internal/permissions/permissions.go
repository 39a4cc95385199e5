package permissions

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Action is an operation class checked against a world role.
type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
	ActionAdmin Action = "admin"
)

// Role is the level a user holds in a world. Owners are implicit: the world
// record names them, collaborators carry editor or reader.
type Role string

const (
	RoleNone   Role = ""
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleReader Role = "reader"
)

var ErrPermissionDenied = errors.New("permissions: denied")

// Error reports the action that was refused. It unwraps to ErrPermissionDenied.
type Error struct {
	Action Action
	Role   Role
}

func (e Error) Error() string {
	if e.Action == "" {
		return "permission denied"
	}
	return "permission denied: " + string(e.Action)
}

func (e Error) Unwrap() error {
	return ErrPermissionDenied
}

// Principal is the authenticated caller of an operation. It is passed
// explicitly to every world and article operation.
type Principal struct {
	UserID uuid.UUID
}

// NewPrincipal returns a principal for userID.
func NewPrincipal(userID uuid.UUID) Principal {
	return Principal{UserID: userID}
}

// Anonymous reports whether the principal carries no user.
func (p Principal) Anonymous() bool {
	return p.UserID == uuid.Nil
}

// ParseRole normalises a collaborator role. Only editor and reader can be
// granted; ok is false for anything else.
func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleEditor:
		return RoleEditor, true
	case RoleReader:
		return RoleReader, true
	default:
		return RoleNone, false
	}
}

// Allows reports whether role may perform action.
//
//	read  owner, editor, reader
//	write owner, editor
//	admin owner
func Allows(role Role, action Action) bool {
	switch role {
	case RoleOwner:
		return action == ActionRead || action == ActionWrite || action == ActionAdmin
	case RoleEditor:
		return action == ActionRead || action == ActionWrite
	case RoleReader:
		return action == ActionRead
	default:
		return false
	}
}

// Check returns nil when role allows action and an Error otherwise.
func Check(role Role, action Action) error {
	if Allows(role, action) {
		return nil
	}
	return Error{Action: action, Role: role}
}
