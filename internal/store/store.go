// ABOUTME: Store interface and data types for rosterd persistence
// ABOUTME: Defines Person, Address, Club records and the Store interface for database operations

package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist. The
// entity-specific errors below wrap it so callers can match either.
var ErrNotFound = errors.New("not found")

// Entity-specific not-found errors
var (
	ErrPersonNotFound  = fmt.Errorf("person %w", ErrNotFound)
	ErrAddressNotFound = fmt.Errorf("address %w", ErrNotFound)
	ErrClubNotFound    = fmt.Errorf("club %w", ErrNotFound)
)

// ErrConstraint is returned on integrity violations: duplicate keys,
// references to missing rows, or otherwise malformed writes.
var ErrConstraint = errors.New("data integrity violation")

// Person represents an individual person record
type Person struct {
	ID          int64
	FirstName   string
	MiddleName  string
	LastName    string
	DateOfBirth time.Time
}

// Address represents a postal address belonging to a person. Deleting the
// person cascades to its addresses.
type Address struct {
	ID       int64
	Street   string
	City     string
	State    string
	Zipcode  string
	PersonID int64
}

// Club represents a club keyed by its unique name
type Club struct {
	Name        string
	Description string
}

// Membership is the junction between a person and a club. It is removed when
// either side is removed.
type Membership struct {
	PersonID int64
	ClubName string
}

// Store defines the interface for person/address/club persistence
type Store interface {
	// People
	GetPerson(ctx context.Context, id int64) (*Person, error)
	SavePerson(ctx context.Context, p *Person) (*Person, error)
	DeletePerson(ctx context.Context, id int64) error

	// Addresses
	GetAddress(ctx context.Context, id int64) (*Address, error)
	SaveAddress(ctx context.Context, a *Address) (*Address, error)
	ListAddressesByPerson(ctx context.Context, personID int64) ([]*Address, error)
	DeleteAddress(ctx context.Context, id int64) error
	DeleteAddressesByPerson(ctx context.Context, personID int64) error

	// Clubs
	GetClub(ctx context.Context, name string) (*Club, error)
	SaveClub(ctx context.Context, c *Club) (*Club, error)
	DeleteClub(ctx context.Context, name string) error

	// Memberships
	AddMembership(ctx context.Context, personID int64, clubName string) (*Membership, error)
	RemoveMembership(ctx context.Context, personID int64, clubName string) error
	IsMember(ctx context.Context, personID int64, clubName string) (bool, error)
	ListClubsForPerson(ctx context.Context, personID int64) ([]*Club, error)
	ListMembersOfClub(ctx context.Context, clubName string) ([]*Person, error)

	// Close releases the underlying database handle
	Close() error
}
