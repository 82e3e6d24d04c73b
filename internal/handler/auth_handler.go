package handler

import (
	"net/http"

	"go-taskboard/internal/middleware"
	"go-taskboard/internal/model"
	"go-taskboard/internal/service"
	"go-taskboard/pkg/apierror"
)

type AuthHandler struct {
	service *service.AuthService
	audit   *service.AuditService
}

func NewAuthHandler(service *service.AuthService, audit *service.AuditService) *AuthHandler {
	return &AuthHandler{service: service, audit: audit}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload model.RegisterRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	tokens, err := h.service.Register(r.Context(), payload.Email, payload.Password)
	h.record(r, "register", actorFromRequest(r, payload.Email), tokens, err)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, tokens)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	tokens, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	h.record(r, "login", actorFromRequest(r, payload.Email), tokens, err)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, tokens)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload model.RefreshRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	tokens, err := h.service.Refresh(r.Context(), payload.RefreshToken)
	h.record(r, "refresh", actorFromRequest(r, ""), tokens, err)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, tokens)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("UNAUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	user, err := h.service.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user)
}

func (h *AuthHandler) record(r *http.Request, action string, actor model.AuditActor, tokens model.TokenPair, err error) {
	if err == nil {
		actor.UserID = tokens.User.ID
		actor.Email = tokens.User.Email
	}

	h.audit.Record(r.Context(), action, actor, middleware.RequestIDFromContext(r.Context()), err)
}
