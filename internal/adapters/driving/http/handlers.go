package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/swaggo/swag"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error  string `json:"error" example:"invalid input"`
	Detail string `json:"detail,omitempty" example:"{\"message\":\"Invalid access token\"}"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// ReadyResponse lists component health
// @Description Readiness of each backing component
type ReadyResponse struct {
	Status     string            `json:"status" example:"ready"`
	Components map[string]string `json:"components,omitempty"`
}

// PublishBody is the JSON publish request. InternalID takes precedence
// over UserID when both are set.
// @Description Content to publish on behalf of a member
type PublishBody struct {
	UserID     string `json:"user_id,omitempty" example:"abc123"`
	InternalID string `json:"internal_id,omitempty"`
	Text       string `json:"text" example:"Hello from the broker"`
}

// Health endpoints

// handleRoot godoc
// @Summary      Liveness
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       / [get]
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "backend running"})
}

// handleHealth godoc
// @Summary      Health check
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Pings the identity store and any other configured backends
// @Tags         Health
// @Produce      json
// @Success      200  {object}  ReadyResponse
// @Failure      503  {object}  ReadyResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := ReadyResponse{Status: "ready", Components: map[string]string{}}
	status := http.StatusOK

	for name, check := range s.checks {
		if err := check.Ping(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", "component", name, "error", err)
			resp.Components[name] = "unavailable"
			resp.Status = "not ready"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Components[name] = "ok"
	}

	writeJSON(w, status, resp)
}

// handleVersion godoc
// @Summary      Get API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.cfg.Version})
}

func (s *Server) handleSwaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(w, http.StatusNotFound, "api document not registered")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, doc)
}

// OAuth endpoints

// handleOAuthAuthorize godoc
// @Summary      Start LinkedIn authorization
// @Description  Creates a PKCE state and returns the LinkedIn consent URL
// @Tags         OAuth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.AuthorizeRequest  false  "Optional identity hints"
// @Success      200      {object}  driving.AuthorizeResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      503      {object}  ErrorResponse
// @Router       /api/v1/oauth/authorize [post]
func (s *Server) handleOAuthAuthorize(w http.ResponseWriter, r *http.Request) {
	var req driving.AuthorizeRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.oauthService.Authorize(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleOAuthCallback godoc
// @Summary      LinkedIn OAuth callback
// @Description  Consumes the state, exchanges the code and stores the encrypted credential
// @Tags         OAuth
// @Produce      json
// @Param        code               query     string  false  "Authorization code"
// @Param        state              query     string  false  "State issued by authorize"
// @Param        error              query     string  false  "Provider error code"
// @Param        error_description  query     string  false  "Provider error description"
// @Success      200  {object}  driving.CallbackResponse
// @Failure      400  {object}  ErrorResponse  "Missing parameters, unknown or expired state, or consent denied"
// @Failure      502  {object}  ErrorResponse  "LinkedIn rejected the exchange or identity call"
// @Router       /api/v1/oauth/callback [get]
func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := s.oauthService.Callback(r.Context(), driving.CallbackRequest{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleStorePKCE godoc
// @Summary      Register an external PKCE pair
// @Description  Stores a client generated state and code verifier for ten minutes. Accepts a JSON body or query parameters.
// @Tags         OAuth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request        body   driving.RegisterStateRequest  false  "State and verifier"
// @Param        state          query  string  false  "State"
// @Param        code_verifier  query  string  false  "Code verifier"
// @Success      200  {object}  StatusResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /pkce/store [post]
func (s *Server) handleStorePKCE(w http.ResponseWriter, r *http.Request) {
	var req driving.RegisterStateRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	q := r.URL.Query()
	if req.State == "" {
		req.State = q.Get("state")
	}
	if req.CodeVerifier == "" {
		req.CodeVerifier = q.Get("code_verifier")
	}

	if err := s.oauthService.RegisterState(r.Context(), req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "stored"})
}

// Publish endpoints

// handlePublish godoc
// @Summary      Publish on behalf of a member
// @Tags         Posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      PublishBody  true  "Author and text"
// @Success      200      {object}  driving.PublishResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse  "Stored LinkedIn token expired or missing"
// @Failure      404      {object}  ErrorResponse
// @Router       /api/v1/posts [post]
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	var body PublishBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	key := domain.ByProviderUserID(body.UserID)
	if body.InternalID != "" {
		key = domain.ByInternalID(body.InternalID)
	}
	s.publish(w, r, driving.PublishRequest{Key: key, Text: body.Text})
}

// handlePostQuery godoc
// @Summary      Publish using query parameters
// @Tags         Posts
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  query     string  true  "LinkedIn user id"
// @Param        text     query     string  true  "Text to publish"
// @Success      200      {object}  driving.PublishResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Router       /post [post]
func (s *Server) handlePostQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.publish(w, r, driving.PublishRequest{
		Key:  domain.ByProviderUserID(q.Get("user_id")),
		Text: q.Get("text"),
	})
}

func (s *Server) publish(w http.ResponseWriter, r *http.Request, req driving.PublishRequest) {
	resp, err := s.publishService.Publish(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Identity endpoints

// handleGetIdentity godoc
// @Summary      Identity status
// @Description  Connection and token validity for an identity. Token material is never returned.
// @Tags         Identities
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true   "LinkedIn user id, or internal id with key=internal"
// @Param        key  query     string  false  "internal to address by internal id"
// @Success      200  {object}  domain.IdentitySummary
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/identities/{id} [get]
func (s *Server) handleGetIdentity(w http.ResponseWriter, r *http.Request) {
	summary, err := s.identityService.Get(r.Context(), identityKey(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleListDrafts godoc
// @Summary      List drafts
// @Tags         Identities
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true   "Identity id"
// @Param        key  query     string  false  "internal to address by internal id"
// @Success      200  {array}   domain.Draft
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/identities/{id}/drafts [get]
func (s *Server) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := s.draftService.List(r.Context(), identityKey(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, drafts)
}

// handleAddDraft godoc
// @Summary      Add a draft
// @Tags         Identities
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true   "Identity id"
// @Param        key      query     string                   false  "internal to address by internal id"
// @Param        request  body      driving.AddDraftRequest  true   "Draft"
// @Success      201      {object}  domain.Draft
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /api/v1/identities/{id}/drafts [post]
func (s *Server) handleAddDraft(w http.ResponseWriter, r *http.Request) {
	var req driving.AddDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Key = identityKey(r)

	draft, err := s.draftService.Add(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, draft)
}

// Helpers

func identityKey(r *http.Request) domain.IdentityKey {
	id := chi.URLParam(r, "id")
	if r.URL.Query().Get("key") == "internal" {
		return domain.ByInternalID(id)
	}
	return domain.ByProviderUserID(id)
}

// decodeOptionalJSON decodes the body into v, treating an empty body as
// the zero request.
func decodeOptionalJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// writeServiceError maps service errors onto HTTP responses.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var authErr *domain.AuthorizationError
	var provErr *domain.ProviderError

	switch {
	case errors.As(err, &authErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: authErr.Error()})

	case errors.As(err, &provErr):
		status := http.StatusBadGateway
		if provErr.Op == domain.ProviderOpPublish && provErr.Status >= 400 {
			status = provErr.Status
		}
		s.logger.Warn("provider call failed", "op", provErr.Op, "status", provErr.Status, "path", r.URL.Path)
		writeJSON(w, status, ErrorResponse{Error: provErr.Error(), Detail: provErr.Body})

	case errors.Is(err, domain.ErrInvalidOrExpiredState):
		writeError(w, http.StatusBadRequest, "PKCE state not found or expired. Please start the OAuth flow again.")

	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, domain.ErrTokenExpiredOrMissing):
		writeError(w, http.StatusUnauthorized, "LinkedIn token expired. User must re-authenticate.")

	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "identity not found")

	case errors.Is(err, domain.ErrStoreUnavailable):
		s.logger.Error("store unavailable", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusServiceUnavailable, "store unavailable")

	case errors.Is(err, domain.ErrDecryption):
		s.logger.Error("stored token could not be decrypted", "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "stored token could not be decrypted")

	default:
		s.logger.Error("request failed", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
