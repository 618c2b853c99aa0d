package rbac

type Role string
type Action string

const (
	RoleUser        Role = "user"
	RoleCoordinator Role = "coordinator"
	RoleAdmin       Role = "admin"
)

const (
	ActionRead     Action = "read"
	ActionWrite    Action = "write"
	ActionModerate Action = "moderate"
	ActionAdmin    Action = "admin"
)

func Can(role Role, action Action) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleCoordinator:
		return action == ActionRead || action == ActionWrite || action == ActionModerate
	case RoleUser:
		return action == ActionRead || action == ActionWrite
	default:
		return false
	}
}

func Normalize(role string) Role {
	switch Role(role) {
	case RoleUser, RoleCoordinator, RoleAdmin:
		return Role(role)
	default:
		return RoleUser
	}
}
