package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/example/crm-ledger/internal/api/middleware"
	"github.com/example/crm-ledger/internal/auth"
	"github.com/example/crm-ledger/internal/domain/team"
)

// AuthHandlers authenticates against the fixed team roster.
type AuthHandlers struct {
	team       *team.Directory
	jwtService *auth.JWTService
}

func NewAuthHandlers(directory *team.Directory, jwtService *auth.JWTService) *AuthHandlers {
	return &AuthHandlers{team: directory, jwtService: jwtService}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse carries the issued tokens.
type TokenResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresAt    time.Time      `json:"expires_at"`
	User         MemberResponse `json:"user"`
}

// MemberResponse is a team member as exposed over the API.
type MemberResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func memberResponse(m team.Member) MemberResponse {
	return MemberResponse{ID: m.ID, Name: m.Name, Email: m.Email, Role: string(m.Role)}
}

// Login exchanges email and password for a token pair.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	member, ok := h.team.ByEmail(req.Email)
	if !ok || !auth.CheckPassword(req.Password, member.PasswordHash) {
		respondJSONError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	h.respondTokens(w, member)
}

// Refresh exchanges a valid refresh token for a fresh token pair.
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	memberID, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		respondJSONError(w, "Invalid refresh token", http.StatusUnauthorized)
		return
	}

	member, ok := h.team.ByID(memberID)
	if !ok {
		respondJSONError(w, "Unknown member", http.StatusUnauthorized)
		return
	}

	h.respondTokens(w, member)
}

// Me returns the authenticated member.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	member, ok := h.team.ByID(claims.UserID)
	if !ok {
		respondJSONError(w, "Member not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, memberResponse(member))
}

func (h *AuthHandlers) respondTokens(w http.ResponseWriter, member team.Member) {
	accessToken, expiresAt, err := h.jwtService.GenerateAccessToken(member.ID, member.Email, string(member.Role))
	if err != nil {
		respondJSONError(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}
	refreshToken, _, err := h.jwtService.GenerateRefreshToken(member.ID)
	if err != nil {
		respondJSONError(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User:         memberResponse(member),
	})
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
