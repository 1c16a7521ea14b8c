package api

import (
	"errors"
	"net/http"

	"nailsalon/internal/entities"
	apperr "nailsalon/internal/errors"
	"nailsalon/internal/service"
)

type AdminAuthHandler struct {
	service service.AdminAuthService
}

func NewAdminAuthHandler(svc service.AdminAuthService) *AdminAuthHandler {
	return &AdminAuthHandler{service: svc}
}

func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req entities.LoginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			err = apperr.ErrUnauthorized("credenciales inválidas")
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.LoginResponse{Token: token})
}

func (h *AdminAuthHandler) CreateUserAdmin(w http.ResponseWriter, r *http.Request) {
	var req entities.CreateAdminRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.CreateAdmin(r.Context(), req.Email, req.Password); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Admin registered successfully"})
}
