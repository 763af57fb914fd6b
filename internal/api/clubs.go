// ABOUTME: JSON CRUD handlers for club records and club memberships
// ABOUTME: Membership endpoints join people to clubs via the junction table

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rosterd/rosterd/internal/store"
)

// ClubRequest is the JSON request body for POST /v1/clubs.
type ClubRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ClubResponse is the JSON representation of a club.
type ClubResponse struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// MembershipResponse is the JSON response for membership operations.
type MembershipResponse struct {
	PersonID int64  `json:"person_id"`
	ClubName string `json:"club_name"`
}

func clubResponse(c *store.Club) ClubResponse {
	return ClubResponse{Name: c.Name, Description: c.Description}
}

// handleCreateClub handles POST /v1/clubs requests.
func (s *Server) handleCreateClub(w http.ResponseWriter, r *http.Request) {
	var req ClubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgIntegrityViolation)
		return
	}

	c, err := s.store.SaveClub(r.Context(), &store.Club{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, clubResponse(c))
}

// handleGetClub handles GET /v1/clubs/{clubName} requests.
func (s *Server) handleGetClub(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetClub(r.Context(), chi.URLParam(r, "clubName"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clubResponse(c))
}

// handleDeleteClub handles DELETE /v1/clubs/{clubName} requests.
// Memberships cascade; member people are untouched.
func (s *Server) handleDeleteClub(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteClub(r.Context(), chi.URLParam(r, "clubName")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// handleListMembers handles GET /v1/clubs/{clubName}/members requests.
func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	people, err := s.store.ListMembersOfClub(r.Context(), chi.URLParam(r, "clubName"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	resp := make([]PersonResponse, 0, len(people))
	for _, p := range people {
		resp = append(resp, personResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListClubsForPerson handles GET /v1/people/{personID}/clubs requests.
func (s *Server) handleListClubsForPerson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "personID")
	if !ok {
		return
	}

	clubs, err := s.store.ListClubsForPerson(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	resp := make([]ClubResponse, 0, len(clubs))
	for _, c := range clubs {
		resp = append(resp, clubResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAddMembership handles PUT /v1/clubs/{clubName}/members/{personID}
// requests. Both the person and the club must exist.
func (s *Server) handleAddMembership(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "personID")
	if !ok {
		return
	}

	m, err := s.store.AddMembership(r.Context(), id, chi.URLParam(r, "clubName"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MembershipResponse{PersonID: m.PersonID, ClubName: m.ClubName})
}

// handleRemoveMembership handles DELETE /v1/clubs/{clubName}/members/{personID}
// requests.
func (s *Server) handleRemoveMembership(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "personID")
	if !ok {
		return
	}

	if err := s.store.RemoveMembership(r.Context(), id, chi.URLParam(r, "clubName")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
