package team

// Seed builds the demo roster used by the prototype. Password hashing is
// injected so this package stays free of crypto dependencies.
func Seed(hash func(password string) (string, error), password string) ([]Member, error) {
	h, err := hash(password)
	if err != nil {
		return nil, err
	}
	return []Member{
		{ID: "t-ava", Name: "Ava Stone", Email: "ava.stone@example.com", Role: RoleAdmin, PasswordHash: h},
		{ID: "t-noah", Name: "Noah Reed", Email: "noah.reed@example.com", Role: RoleManager, PasswordHash: h},
		{ID: "t-mia", Name: "Mia Patel", Email: "mia.patel@example.com", Role: RoleBDM, ManagerID: "t-noah", PasswordHash: h},
		{ID: "t-leo", Name: "Leo Kim", Email: "leo.kim@example.com", Role: RoleBDM, ManagerID: "t-noah", PasswordHash: h},
		{ID: "t-iris", Name: "Iris Novak", Email: "iris.novak@example.com", Role: RoleBDM, PasswordHash: h},
		{ID: "t-svc", Name: "CareForce Service", Email: "careforce@example.com", Role: RoleService, PasswordHash: h},
	}, nil
}
