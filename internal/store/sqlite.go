// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides person/address/club persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// dateFormat is the storage format for dates of birth.
const dateFormat = "2006-01-02"

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Cascade deletes depend on foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS people (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name  TEXT NOT NULL,
			middle_name TEXT,
			last_name   TEXT NOT NULL,
			dob         TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS addresses (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			street    TEXT NOT NULL,
			city      TEXT NOT NULL,
			state     TEXT NOT NULL,
			zipcode   TEXT NOT NULL,
			person_id INTEGER NOT NULL,

			FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_addresses_person_id
			ON addresses(person_id);

		CREATE TABLE IF NOT EXISTS clubs (
			name        TEXT PRIMARY KEY,
			description TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS club_memberships (
			person_id INTEGER NOT NULL,
			club_name TEXT NOT NULL,

			PRIMARY KEY (person_id, club_name),
			FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE,
			FOREIGN KEY (club_name) REFERENCES clubs(name) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_memberships_club
			ON club_memberships(club_name);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetPerson retrieves a person by ID
func (s *SQLiteStore) GetPerson(ctx context.Context, id int64) (*Person, error) {
	query := `SELECT id, first_name, COALESCE(middle_name, ''), last_name, dob FROM people WHERE id = ?`

	var p Person
	var dob string
	err := s.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.FirstName, &p.MiddleName, &p.LastName, &dob)
	if err == sql.ErrNoRows {
		return nil, ErrPersonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting person: %w", err)
	}

	p.DateOfBirth, err = time.Parse(dateFormat, dob)
	if err != nil {
		return nil, fmt.Errorf("parsing dob for person %d: %w", id, err)
	}
	return &p, nil
}

// SavePerson inserts a new person (ID zero) or updates an existing one.
// Updating a non-existent person returns ErrPersonNotFound.
func (s *SQLiteStore) SavePerson(ctx context.Context, p *Person) (*Person, error) {
	if p.FirstName == "" || p.LastName == "" || p.DateOfBirth.IsZero() {
		return nil, fmt.Errorf("%w: person requires first name, last name and date of birth", ErrConstraint)
	}

	dob := p.DateOfBirth.Format(dateFormat)

	if p.ID == 0 {
		query := `INSERT INTO people (first_name, middle_name, last_name, dob) VALUES (?, ?, ?, ?)`
		res, err := s.db.ExecContext(ctx, query, p.FirstName, nullable(p.MiddleName), p.LastName, dob)
		if err != nil {
			return nil, mapConstraint(err, "inserting person")
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("reading inserted person id: %w", err)
		}
		saved := *p
		saved.ID = id
		s.logger.Debug("inserted person", "id", id)
		return &saved, nil
	}

	query := `UPDATE people SET first_name = ?, middle_name = ?, last_name = ?, dob = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, query, p.FirstName, nullable(p.MiddleName), p.LastName, dob, p.ID)
	if err != nil {
		return nil, mapConstraint(err, "updating person")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating person: %w", err)
	}
	if n == 0 {
		return nil, ErrPersonNotFound
	}
	saved := *p
	s.logger.Debug("updated person", "id", p.ID)
	return &saved, nil
}

// DeletePerson removes a person. Addresses and club memberships cascade.
// Deleting a non-existent person is a no-op.
func (s *SQLiteStore) DeletePerson(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM people WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting person: %w", err)
	}
	s.logger.Debug("deleted person", "id", id)
	return nil
}

// GetAddress retrieves an address by ID
func (s *SQLiteStore) GetAddress(ctx context.Context, id int64) (*Address, error) {
	query := `SELECT id, street, city, state, zipcode, person_id FROM addresses WHERE id = ?`

	var a Address
	err := s.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Street, &a.City, &a.State, &a.Zipcode, &a.PersonID)
	if err == sql.ErrNoRows {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting address: %w", err)
	}
	return &a, nil
}

// SaveAddress inserts a new address (ID zero) or updates an existing one.
// The referenced person must exist; a missing person surfaces as
// ErrConstraint via the foreign key.
func (s *SQLiteStore) SaveAddress(ctx context.Context, a *Address) (*Address, error) {
	if a.Street == "" || a.City == "" || a.State == "" || a.Zipcode == "" || a.PersonID == 0 {
		return nil, fmt.Errorf("%w: address requires street, city, state, zipcode and person", ErrConstraint)
	}

	if a.ID == 0 {
		query := `INSERT INTO addresses (street, city, state, zipcode, person_id) VALUES (?, ?, ?, ?, ?)`
		res, err := s.db.ExecContext(ctx, query, a.Street, a.City, a.State, a.Zipcode, a.PersonID)
		if err != nil {
			return nil, mapConstraint(err, "inserting address")
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("reading inserted address id: %w", err)
		}
		saved := *a
		saved.ID = id
		s.logger.Debug("inserted address", "id", id, "person_id", a.PersonID)
		return &saved, nil
	}

	query := `UPDATE addresses SET street = ?, city = ?, state = ?, zipcode = ?, person_id = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, query, a.Street, a.City, a.State, a.Zipcode, a.PersonID, a.ID)
	if err != nil {
		return nil, mapConstraint(err, "updating address")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating address: %w", err)
	}
	if n == 0 {
		return nil, ErrAddressNotFound
	}
	saved := *a
	return &saved, nil
}

// ListAddressesByPerson returns all addresses for a person, oldest first.
// A person with no addresses yields an empty slice, not an error.
func (s *SQLiteStore) ListAddressesByPerson(ctx context.Context, personID int64) ([]*Address, error) {
	query := `SELECT id, street, city, state, zipcode, person_id FROM addresses WHERE person_id = ? ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, personID)
	if err != nil {
		return nil, fmt.Errorf("listing addresses: %w", err)
	}
	defer rows.Close()

	addresses := []*Address{}
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.Street, &a.City, &a.State, &a.Zipcode, &a.PersonID); err != nil {
			return nil, fmt.Errorf("scanning address: %w", err)
		}
		addresses = append(addresses, &a)
	}
	return addresses, rows.Err()
}

// DeleteAddress removes an address by ID. Idempotent.
func (s *SQLiteStore) DeleteAddress(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM addresses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting address: %w", err)
	}
	return nil
}

// DeleteAddressesByPerson removes all addresses belonging to a person.
func (s *SQLiteStore) DeleteAddressesByPerson(ctx context.Context, personID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM addresses WHERE person_id = ?`, personID)
	if err != nil {
		return fmt.Errorf("deleting addresses for person: %w", err)
	}
	s.logger.Debug("deleted addresses", "person_id", personID)
	return nil
}

// GetClub retrieves a club by name
func (s *SQLiteStore) GetClub(ctx context.Context, name string) (*Club, error) {
	query := `SELECT name, description FROM clubs WHERE name = ?`

	var c Club
	err := s.db.QueryRowContext(ctx, query, name).Scan(&c.Name, &c.Description)
	if err == sql.ErrNoRows {
		return nil, ErrClubNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting club: %w", err)
	}
	return &c, nil
}

// SaveClub inserts a new club. A duplicate name is an integrity violation.
func (s *SQLiteStore) SaveClub(ctx context.Context, c *Club) (*Club, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("%w: club requires a name", ErrConstraint)
	}

	query := `INSERT INTO clubs (name, description) VALUES (?, ?)`
	if _, err := s.db.ExecContext(ctx, query, c.Name, c.Description); err != nil {
		return nil, mapConstraint(err, "inserting club")
	}
	saved := *c
	s.logger.Debug("inserted club", "name", c.Name)
	return &saved, nil
}

// DeleteClub removes a club by name. Memberships cascade; people remain.
func (s *SQLiteStore) DeleteClub(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM clubs WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting club: %w", err)
	}
	s.logger.Debug("deleted club", "name", name)
	return nil
}

// AddMembership enrolls a person in a club. Both sides must exist; missing
// ones surface as their entity-specific not-found errors. A duplicate
// membership is an integrity violation.
func (s *SQLiteStore) AddMembership(ctx context.Context, personID int64, clubName string) (*Membership, error) {
	if _, err := s.GetPerson(ctx, personID); err != nil {
		return nil, err
	}
	if _, err := s.GetClub(ctx, clubName); err != nil {
		return nil, err
	}

	query := `INSERT INTO club_memberships (person_id, club_name) VALUES (?, ?)`
	if _, err := s.db.ExecContext(ctx, query, personID, clubName); err != nil {
		return nil, mapConstraint(err, "inserting membership")
	}
	s.logger.Debug("added membership", "person_id", personID, "club", clubName)
	return &Membership{PersonID: personID, ClubName: clubName}, nil
}

// RemoveMembership removes a person from a club. Idempotent.
func (s *SQLiteStore) RemoveMembership(ctx context.Context, personID int64, clubName string) error {
	query := `DELETE FROM club_memberships WHERE person_id = ? AND club_name = ?`
	if _, err := s.db.ExecContext(ctx, query, personID, clubName); err != nil {
		return fmt.Errorf("removing membership: %w", err)
	}
	return nil
}

// IsMember reports whether a person belongs to a club. Non-existent people
// or clubs report false, not an error.
func (s *SQLiteStore) IsMember(ctx context.Context, personID int64, clubName string) (bool, error) {
	query := `SELECT COUNT(*) FROM club_memberships WHERE person_id = ? AND club_name = ?`

	var count int
	if err := s.db.QueryRowContext(ctx, query, personID, clubName).Scan(&count); err != nil {
		return false, fmt.Errorf("checking membership: %w", err)
	}
	return count > 0, nil
}

// ListClubsForPerson returns the clubs a person belongs to, by name.
func (s *SQLiteStore) ListClubsForPerson(ctx context.Context, personID int64) ([]*Club, error) {
	query := `
		SELECT c.name, c.description
		FROM clubs c
		JOIN club_memberships m ON m.club_name = c.name
		WHERE m.person_id = ?
		ORDER BY c.name
	`

	rows, err := s.db.QueryContext(ctx, query, personID)
	if err != nil {
		return nil, fmt.Errorf("listing clubs for person: %w", err)
	}
	defer rows.Close()

	clubs := []*Club{}
	for rows.Next() {
		var c Club
		if err := rows.Scan(&c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("scanning club: %w", err)
		}
		clubs = append(clubs, &c)
	}
	return clubs, rows.Err()
}

// ListMembersOfClub returns the people enrolled in a club, oldest member
// first.
func (s *SQLiteStore) ListMembersOfClub(ctx context.Context, clubName string) ([]*Person, error) {
	query := `
		SELECT p.id, p.first_name, COALESCE(p.middle_name, ''), p.last_name, p.dob
		FROM people p
		JOIN club_memberships m ON m.person_id = p.id
		WHERE m.club_name = ?
		ORDER BY p.id
	`

	rows, err := s.db.QueryContext(ctx, query, clubName)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	defer rows.Close()

	people := []*Person{}
	for rows.Next() {
		var p Person
		var dob string
		if err := rows.Scan(&p.ID, &p.FirstName, &p.MiddleName, &p.LastName, &dob); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		p.DateOfBirth, err = time.Parse(dateFormat, dob)
		if err != nil {
			return nil, fmt.Errorf("parsing dob for person %d: %w", p.ID, err)
		}
		people = append(people, &p)
	}
	return people, rows.Err()
}

// nullable converts an empty string to a SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// mapConstraint wraps SQLite constraint failures as ErrConstraint.
// SQLite reports these as "... constraint failed" in the error message.
func mapConstraint(err error, op string) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "constraint failed") {
		return fmt.Errorf("%w: %s: %v", ErrConstraint, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

var _ Store = (*SQLiteStore)(nil)
