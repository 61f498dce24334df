package models

// Identity is the authenticated caller passed explicitly into services.
type Identity struct {
	ID   string
	Role string
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// CanModify reports whether the caller may change a resource owned by ownerID.
func (i Identity) CanModify(ownerID string) bool {
	return i.ID != "" && (i.ID == ownerID || i.IsAdmin())
}
