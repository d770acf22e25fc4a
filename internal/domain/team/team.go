package team

import "errors"

var ErrMemberNotFound = errors.New("team member not found")

type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
	RoleBDM     Role = "BDM"
	RoleService Role = "Service"
)

type Member struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	Phone        string `json:"phone,omitempty"`
	PasswordHash string `json:"-"`
	ManagerID    string `json:"manager_id,omitempty"`
}

// Directory is the in-memory team roster. The roster is fixed for a session;
// reads need no locking.
type Directory struct {
	members []Member
	byID    map[string]Member
	byEmail map[string]Member
}

func NewDirectory(members []Member) *Directory {
	d := &Directory{
		members: members,
		byID:    make(map[string]Member, len(members)),
		byEmail: make(map[string]Member, len(members)),
	}
	for _, m := range members {
		d.byID[m.ID] = m
		if m.Email != "" {
			d.byEmail[m.Email] = m
		}
	}
	return d
}

func (d *Directory) ByID(id string) (Member, bool) {
	m, ok := d.byID[id]
	return m, ok
}

func (d *Directory) ByEmail(email string) (Member, bool) {
	m, ok := d.byEmail[email]
	return m, ok
}

func (d *Directory) All() []Member {
	out := make([]Member, len(d.members))
	copy(out, d.members)
	return out
}

// ReportsTo returns the members whose manager is the given member.
func (d *Directory) ReportsTo(managerID string) []Member {
	var out []Member
	for _, m := range d.members {
		if m.ManagerID == managerID {
			out = append(out, m)
		}
	}
	return out
}

// VisibleOwnerIDs returns the set of owner ids whose records the viewer may
// see. Admins see everything, signalled by all=true. Managers see their own
// records plus their reports'; everyone else sees only their own.
func (d *Directory) VisibleOwnerIDs(viewerID string) (owners map[string]bool, all bool) {
	viewer, ok := d.byID[viewerID]
	if !ok {
		return map[string]bool{}, false
	}
	if viewer.Role == RoleAdmin {
		return nil, true
	}
	owners = map[string]bool{viewer.ID: true}
	for _, m := range d.ReportsTo(viewerID) {
		owners[m.ID] = true
	}
	return owners, false
}

// CanSee reports whether the viewer may see records owned by ownerID.
func (d *Directory) CanSee(viewerID, ownerID string) bool {
	owners, all := d.VisibleOwnerIDs(viewerID)
	return all || owners[ownerID]
}
