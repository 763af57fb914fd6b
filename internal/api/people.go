// ABOUTME: JSON CRUD handlers for person and address records
// ABOUTME: Maps store sentinels to stable 404/400 responses

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rosterd/rosterd/internal/store"
)

// msgIntegrityViolation is the stable 400 body for malformed or duplicate
// writes.
const msgIntegrityViolation = "Data integrity violation. Please check that the data is valid and not malformed."

// dateFormat is the wire format for dates of birth.
const dateFormat = "2006-01-02"

// PersonRequest is the JSON request body for POST /v1/people.
type PersonRequest struct {
	ID          int64  `json:"id,omitempty"`
	FirstName   string `json:"first_name"`
	MiddleName  string `json:"middle_name,omitempty"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
}

// PersonResponse is the JSON representation of a person.
type PersonResponse struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	MiddleName  string `json:"middle_name,omitempty"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
}

// AddressRequest is the JSON request body for POST /v1/addresses.
type AddressRequest struct {
	ID       int64  `json:"id,omitempty"`
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zipcode  string `json:"zipcode"`
	PersonID int64  `json:"person_id"`
}

// AddressResponse is the JSON representation of an address.
type AddressResponse struct {
	ID       int64  `json:"id"`
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zipcode  string `json:"zipcode"`
	PersonID int64  `json:"person_id"`
}

func personResponse(p *store.Person) PersonResponse {
	return PersonResponse{
		ID:          p.ID,
		FirstName:   p.FirstName,
		MiddleName:  p.MiddleName,
		LastName:    p.LastName,
		DateOfBirth: p.DateOfBirth.Format(dateFormat),
	}
}

func addressResponse(a *store.Address) AddressResponse {
	return AddressResponse{
		ID:       a.ID,
		Street:   a.Street,
		City:     a.City,
		State:    a.State,
		Zipcode:  a.Zipcode,
		PersonID: a.PersonID,
	}
}

// writeStoreError maps persistence sentinels to HTTP responses: not-found
// variants to 404 with the entity message, integrity violations to a stable
// 400 body, anything else to 500.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrConstraint):
		writeError(w, http.StatusBadRequest, msgIntegrityViolation)
	default:
		s.logger.Error("store error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// pathID parses a numeric chi URL parameter. A non-numeric value yields
// ok=false after writing the 404.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "invalid "+name)
		return 0, false
	}
	return id, true
}

// handleGetPerson handles GET /v1/people/{personID} requests.
func (s *Server) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "personID")
	if !ok {
		return
	}

	p, err := s.store.GetPerson(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, personResponse(p))
}

// handleCreatePerson handles POST /v1/people requests. A body carrying an
// existing ID updates that person instead.
func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var req PersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgIntegrityViolation)
		return
	}

	dob, err := time.Parse(dateFormat, req.DateOfBirth)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgIntegrityViolation)
		return
	}

	p, err := s.store.SavePerson(r.Context(), &store.Person{
		ID:          req.ID,
		FirstName:   req.FirstName,
		MiddleName:  req.MiddleName,
		LastName:    req.LastName,
		DateOfBirth: dob,
	})
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, personResponse(p))
}

// handleDeletePerson handles DELETE /v1/people/{personID} requests.
// Addresses and memberships cascade in the store.
func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "personID")
	if !ok {
		return
	}

	if err := s.store.DeletePerson(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// handleListAddresses handles GET /v1/people/{personID}/addresses requests.
func (s *Server) handleListAddresses(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "personID")
	if !ok {
		return
	}

	addresses, err := s.store.ListAddressesByPerson(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	resp := make([]AddressResponse, 0, len(addresses))
	for _, a := range addresses {
		resp = append(resp, addressResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDeleteAddresses handles DELETE /v1/people/{personID}/addresses requests.
func (s *Server) handleDeleteAddresses(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "personID")
	if !ok {
		return
	}

	if err := s.store.DeleteAddressesByPerson(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// handleCreateAddress handles POST /v1/addresses requests.
func (s *Server) handleCreateAddress(w http.ResponseWriter, r *http.Request) {
	var req AddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgIntegrityViolation)
		return
	}

	a, err := s.store.SaveAddress(r.Context(), &store.Address{
		ID:       req.ID,
		Street:   req.Street,
		City:     req.City,
		State:    req.State,
		Zipcode:  req.Zipcode,
		PersonID: req.PersonID,
	})
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, addressResponse(a))
}

// handleGetAddress handles GET /v1/addresses/{addressID} requests.
func (s *Server) handleGetAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "addressID")
	if !ok {
		return
	}

	a, err := s.store.GetAddress(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addressResponse(a))
}

// handleDeleteAddress handles DELETE /v1/addresses/{addressID} requests.
func (s *Server) handleDeleteAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "addressID")
	if !ok {
		return
	}

	if err := s.store.DeleteAddress(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
