package team

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoster() []Member {
	return []Member{
		{ID: "t-ava", Name: "Ava Stone", Email: "ava@example.com", Role: RoleAdmin},
		{ID: "t-noah", Name: "Noah Reed", Email: "noah@example.com", Role: RoleManager},
		{ID: "t-mia", Name: "Mia Patel", Email: "mia@example.com", Role: RoleBDM, ManagerID: "t-noah"},
		{ID: "t-leo", Name: "Leo Kim", Email: "leo@example.com", Role: RoleBDM, ManagerID: "t-noah"},
		{ID: "t-iris", Name: "Iris Novak", Email: "iris@example.com", Role: RoleBDM},
	}
}

func TestDirectory_Lookups(t *testing.T) {
	d := NewDirectory(testRoster())

	m, ok := d.ByID("t-mia")
	require.True(t, ok)
	assert.Equal(t, "Mia Patel", m.Name)

	m, ok = d.ByEmail("noah@example.com")
	require.True(t, ok)
	assert.Equal(t, RoleManager, m.Role)

	_, ok = d.ByID("ghost")
	assert.False(t, ok)

	assert.Len(t, d.All(), 5)
}

func TestDirectory_ReportsTo(t *testing.T) {
	d := NewDirectory(testRoster())

	reports := d.ReportsTo("t-noah")
	require.Len(t, reports, 2)
	assert.Equal(t, "t-mia", reports[0].ID)
	assert.Equal(t, "t-leo", reports[1].ID)

	assert.Empty(t, d.ReportsTo("t-mia"))
}

func TestVisibleOwnerIDs_Admin(t *testing.T) {
	d := NewDirectory(testRoster())

	_, all := d.VisibleOwnerIDs("t-ava")
	assert.True(t, all)
}

func TestVisibleOwnerIDs_Manager(t *testing.T) {
	d := NewDirectory(testRoster())

	owners, all := d.VisibleOwnerIDs("t-noah")
	assert.False(t, all)
	assert.True(t, owners["t-noah"])
	assert.True(t, owners["t-mia"])
	assert.True(t, owners["t-leo"])
	assert.False(t, owners["t-iris"])
}

func TestVisibleOwnerIDs_BDM(t *testing.T) {
	d := NewDirectory(testRoster())

	owners, all := d.VisibleOwnerIDs("t-iris")
	assert.False(t, all)
	assert.Equal(t, map[string]bool{"t-iris": true}, owners)
}

func TestVisibleOwnerIDs_UnknownViewer(t *testing.T) {
	d := NewDirectory(testRoster())

	owners, all := d.VisibleOwnerIDs("ghost")
	assert.False(t, all)
	assert.Empty(t, owners)
}

func TestCanSee(t *testing.T) {
	d := NewDirectory(testRoster())

	assert.True(t, d.CanSee("t-ava", "t-iris"))
	assert.True(t, d.CanSee("t-noah", "t-mia"))
	assert.False(t, d.CanSee("t-noah", "t-iris"))
	assert.True(t, d.CanSee("t-mia", "t-mia"))
	assert.False(t, d.CanSee("t-mia", "t-leo"))
	assert.False(t, d.CanSee("ghost", "t-mia"))
}

func TestSeed(t *testing.T) {
	members, err := Seed(func(p string) (string, error) { return "hash:" + p, nil }, "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, members)

	d := NewDirectory(members)
	admin := 0
	for _, m := range members {
		assert.Equal(t, "hash:secret123", m.PasswordHash)
		assert.NotEmpty(t, m.Email)
		if m.Role == RoleAdmin {
			admin++
		}
		if m.ManagerID != "" {
			_, ok := d.ByID(m.ManagerID)
			assert.True(t, ok, "manager %s missing", m.ManagerID)
		}
	}
	assert.Equal(t, 1, admin)
}
