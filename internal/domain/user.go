package domain

import "time"

const (
	RoleMember = 1
	RoleAdmin  = 2
)

// User represents a crew member without persistence concerns.
type User struct {
	ID                  int64      `json:"user_id"`
	Username            string     `json:"username"`
	FullName            string     `json:"full_name"`
	Email               string     `json:"email"`
	RoleID              int        `json:"role_id"`
	Shift               string     `json:"shift"`
	AvatarURL           string     `json:"avatar_url,omitempty"`
	CompletedTasksCount int        `json:"completed_tasks_count"`
	TotalTasksCount     int        `json:"total_tasks_count"`
	RegisteredAt        time.Time  `json:"registered_at"`
	IsDeleted           bool       `json:"-"`
	DeletedAt           *time.Time `json:"-"`
}

// IsAdmin reports whether the user carries the administrator role.
func (u User) IsAdmin() bool {
	return u.RoleID == RoleAdmin
}

// Actor is the authenticated identity attached to every request by the auth
// middleware. The core trusts role and shift unconditionally.
type Actor struct {
	ID       int64
	Username string
	RoleID   int
	Shift    string
}

func (a Actor) IsAdmin() bool {
	return a.RoleID == RoleAdmin
}

// UserPatch enumerates the mutable profile fields. Nil means "leave as is";
// diffs are computed field by field, never by reflection.
type UserPatch struct {
	Username  *string
	FullName  *string
	Email     *string
	Shift     *string
	AvatarURL *string
}

// Diff returns the subset of patch fields whose value actually differs from
// the current state. An empty diff means the mutation is a no-op and must
// not produce an audit record.
func (p UserPatch) Diff(cur User) Diff {
	d := Diff{}
	if p.Username != nil && *p.Username != cur.Username {
		d["username"] = FieldChange{Old: cur.Username, New: *p.Username}
	}
	if p.FullName != nil && *p.FullName != cur.FullName {
		d["full_name"] = FieldChange{Old: cur.FullName, New: *p.FullName}
	}
	if p.Email != nil && *p.Email != cur.Email {
		d["email"] = FieldChange{Old: cur.Email, New: *p.Email}
	}
	if p.Shift != nil && *p.Shift != cur.Shift {
		d["shift"] = FieldChange{Old: cur.Shift, New: *p.Shift}
	}
	if p.AvatarURL != nil && *p.AvatarURL != cur.AvatarURL {
		d["avatar_url"] = FieldChange{Old: cur.AvatarURL, New: *p.AvatarURL}
	}
	return d
}

// Apply writes the changed fields onto the user.
func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Shift != nil {
		u.Shift = *p.Shift
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
}

// UserFilter narrows user search results. All fields are optional.
type UserFilter struct {
	Username string
	FullName string
	Email    string
	RoleID   int
	Limit    int
}
