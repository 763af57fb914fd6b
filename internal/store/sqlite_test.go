// ABOUTME: Tests for the SQLite store implementation
// ABOUTME: Covers CRUD operations, cascade deletes, and integrity violations

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testDOB(t *testing.T, value string) time.Time {
	t.Helper()
	dob, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return dob
}

func insertPerson(t *testing.T, s *SQLiteStore, first, last string) *Person {
	t.Helper()
	p, err := s.SavePerson(context.Background(), &Person{
		FirstName:   first,
		LastName:    last,
		DateOfBirth: testDOB(t, "1990-06-15"),
	})
	require.NoError(t, err)
	return p
}

func TestSavePerson_InsertAndGet(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	saved, err := s.SavePerson(ctx, &Person{
		FirstName:   "Ada",
		MiddleName:  "King",
		LastName:    "Lovelace",
		DateOfBirth: testDOB(t, "1815-12-10"),
	})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	got, err := s.GetPerson(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.FirstName)
	assert.Equal(t, "King", got.MiddleName)
	assert.Equal(t, "Lovelace", got.LastName)
	assert.Equal(t, testDOB(t, "1815-12-10"), got.DateOfBirth)
}

func TestSavePerson_OptionalMiddleName(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	saved := insertPerson(t, s, "Grace", "Hopper")

	got, err := s.GetPerson(ctx, saved.ID)
	require.NoError(t, err)
	assert.Empty(t, got.MiddleName)
}

func TestSavePerson_Update(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	saved := insertPerson(t, s, "Gracie", "Hopper")
	saved.FirstName = "Grace"

	updated, err := s.SavePerson(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)

	got, err := s.GetPerson(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.FirstName)
}

func TestSavePerson_UpdateMissing(t *testing.T) {
	s := createTestStore(t)

	_, err := s.SavePerson(context.Background(), &Person{
		ID:          9999,
		FirstName:   "No",
		LastName:    "One",
		DateOfBirth: testDOB(t, "1990-01-01"),
	})
	assert.ErrorIs(t, err, ErrPersonNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSavePerson_MissingFields(t *testing.T) {
	s := createTestStore(t)

	_, err := s.SavePerson(context.Background(), &Person{FirstName: "Only"})
	assert.ErrorIs(t, err, ErrConstraint)
}

func TestGetPerson_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetPerson(context.Background(), 404)
	assert.ErrorIs(t, err, ErrPersonNotFound)
}

func TestDeletePerson_CascadesAddressesAndMemberships(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	p := insertPerson(t, s, "Alan", "Turing")

	addr, err := s.SaveAddress(ctx, &Address{
		Street: "1 Bletchley Park", City: "Milton Keynes", State: "BKM", Zipcode: "MK3", PersonID: p.ID,
	})
	require.NoError(t, err)

	_, err = s.SaveClub(ctx, &Club{Name: "chess", Description: "Chess club"})
	require.NoError(t, err)
	_, err = s.AddMembership(ctx, p.ID, "chess")
	require.NoError(t, err)

	require.NoError(t, s.DeletePerson(ctx, p.ID))

	_, err = s.GetPerson(ctx, p.ID)
	assert.ErrorIs(t, err, ErrPersonNotFound)

	_, err = s.GetAddress(ctx, addr.ID)
	assert.ErrorIs(t, err, ErrAddressNotFound)

	member, err := s.IsMember(ctx, p.ID, "chess")
	require.NoError(t, err)
	assert.False(t, member)

	// The club itself survives
	_, err = s.GetClub(ctx, "chess")
	assert.NoError(t, err)
}

func TestSaveAddress_UnknownPerson(t *testing.T) {
	s := createTestStore(t)

	_, err := s.SaveAddress(context.Background(), &Address{
		Street: "Nowhere 1", City: "Nowhere", State: "NA", Zipcode: "00000", PersonID: 12345,
	})
	assert.ErrorIs(t, err, ErrConstraint)
}

func TestListAddressesByPerson(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	p := insertPerson(t, s, "Joan", "Clarke")

	for _, street := range []string{"First St 1", "Second St 2"} {
		_, err := s.SaveAddress(ctx, &Address{
			Street: street, City: "London", State: "LDN", Zipcode: "E1", PersonID: p.ID,
		})
		require.NoError(t, err)
	}

	addresses, err := s.ListAddressesByPerson(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, addresses, 2)
	assert.Equal(t, "First St 1", addresses[0].Street)

	// Unknown person is an empty list, not an error
	none, err := s.ListAddressesByPerson(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteAddressesByPerson(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	p := insertPerson(t, s, "Mary", "Somerville")
	_, err := s.SaveAddress(ctx, &Address{
		Street: "Main St 5", City: "Edinburgh", State: "SCT", Zipcode: "EH1", PersonID: p.ID,
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteAddressesByPerson(ctx, p.ID))

	addresses, err := s.ListAddressesByPerson(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, addresses)

	// The person remains
	_, err = s.GetPerson(ctx, p.ID)
	assert.NoError(t, err)
}

func TestSaveClub_DuplicateName(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.SaveClub(ctx, &Club{Name: "debate"})
	require.NoError(t, err)

	_, err = s.SaveClub(ctx, &Club{Name: "debate"})
	assert.ErrorIs(t, err, ErrConstraint)
}

func TestGetClub_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetClub(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrClubNotFound)
}

func TestDeleteClub_CascadesMembershipsOnly(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	p := insertPerson(t, s, "Katherine", "Johnson")
	_, err := s.SaveClub(ctx, &Club{Name: "math"})
	require.NoError(t, err)
	_, err = s.AddMembership(ctx, p.ID, "math")
	require.NoError(t, err)

	require.NoError(t, s.DeleteClub(ctx, "math"))

	member, err := s.IsMember(ctx, p.ID, "math")
	require.NoError(t, err)
	assert.False(t, member)

	_, err = s.GetPerson(ctx, p.ID)
	assert.NoError(t, err)
}

func TestAddMembership_MissingSides(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	p := insertPerson(t, s, "Annie", "Easley")
	_, err := s.SaveClub(ctx, &Club{Name: "rocketry"})
	require.NoError(t, err)

	_, err = s.AddMembership(ctx, 9999, "rocketry")
	assert.ErrorIs(t, err, ErrPersonNotFound)

	_, err = s.AddMembership(ctx, p.ID, "nonexistent")
	assert.ErrorIs(t, err, ErrClubNotFound)
}

func TestAddMembership_Duplicate(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	p := insertPerson(t, s, "Dorothy", "Vaughan")
	_, err := s.SaveClub(ctx, &Club{Name: "computing"})
	require.NoError(t, err)

	_, err = s.AddMembership(ctx, p.ID, "computing")
	require.NoError(t, err)

	_, err = s.AddMembership(ctx, p.ID, "computing")
	assert.ErrorIs(t, err, ErrConstraint)
}

func TestMembershipListings(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	alice := insertPerson(t, s, "Alice", "Walker")
	bob := insertPerson(t, s, "Bob", "Marley")

	for _, name := range []string{"book", "music"} {
		_, err := s.SaveClub(ctx, &Club{Name: name})
		require.NoError(t, err)
	}

	_, err := s.AddMembership(ctx, alice.ID, "book")
	require.NoError(t, err)
	_, err = s.AddMembership(ctx, alice.ID, "music")
	require.NoError(t, err)
	_, err = s.AddMembership(ctx, bob.ID, "music")
	require.NoError(t, err)

	clubs, err := s.ListClubsForPerson(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, clubs, 2)
	assert.Equal(t, "book", clubs[0].Name)

	members, err := s.ListMembersOfClub(ctx, "music")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "Alice", members[0].FirstName)
	assert.Equal(t, "Bob", members[1].FirstName)
}

func TestRemoveMembership(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	p := insertPerson(t, s, "Mae", "Jemison")
	_, err := s.SaveClub(ctx, &Club{Name: "astro"})
	require.NoError(t, err)
	_, err = s.AddMembership(ctx, p.ID, "astro")
	require.NoError(t, err)

	require.NoError(t, s.RemoveMembership(ctx, p.ID, "astro"))

	member, err := s.IsMember(ctx, p.ID, "astro")
	require.NoError(t, err)
	assert.False(t, member)

	// Idempotent
	require.NoError(t, s.RemoveMembership(ctx, p.ID, "astro"))
}
