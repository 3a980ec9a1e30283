package handlers

import (
	"net/http"

	"retailshop/internal/models"
)

type AccountHandler struct {
	accounts AccountService
}

func NewAccountHandler(accounts AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	user, err := h.accounts.Register(r.Context(),
		r.PostFormValue("username"), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{Message: "Registration successful. You can now log in.", Data: user})
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	session, err := h.accounts.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.accounts.Profile(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	profile := &models.Profile{
		UserID:      userID(r),
		PhoneNumber: r.PostFormValue("phone_number"),
		Address:     r.PostFormValue("address"),
	}
	if err := h.accounts.UpdateProfile(r.Context(), profile); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Your profile was updated.", Data: profile})
}
