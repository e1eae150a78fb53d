package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"munidenuncia/internal/middleware"
	"munidenuncia/internal/models"
	"munidenuncia/internal/state"
	"munidenuncia/internal/utils"
	"munidenuncia/internal/validation"
)

const sessionTTL = 24 * time.Hour

type AuthHTTP struct {
	auth   *state.AuthStore
	secret string
	log    zerolog.Logger
}

func NewAuthHTTP(auth *state.AuthStore, secret string, log zerolog.Logger) *AuthHTTP {
	return &AuthHTTP{auth: auth, secret: secret, log: log}
}

func (h *AuthHTTP) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in models.Credentials
		if err := utils.Decode(r, &in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		if err := validation.Login(in).Err(); err != nil {
			writeErr(w, h.log, err)
			return
		}

		res, err := h.auth.Login(r.Context(), in)
		if err != nil {
			writeErr(w, h.log, err)
			return
		}

		token, err := utils.SignJWT(h.secret, res.User, sessionTTL)
		if err != nil {
			writeErr(w, h.log, err)
			return
		}
		middleware.SetSession(w, token, int(sessionTTL.Seconds()))
		utils.JSON(w, http.StatusOK, models.AuthResult{User: res.User, Token: token})
	}
}

// ownsSession reports whether the adapter's persisted session belongs to
// the caller. That session is process-wide; other users must not see or end it.
func (h *AuthHTTP) ownsSession(r *http.Request) (state.AuthState, bool) {
	st := h.auth.Snapshot()
	uid, _ := currentUser(r)
	return st, st.User != nil && uid != "" && st.User.ID == uid
}

// Logout always drops the caller's cookie; the adapter session is ended
// only when it is the caller's own.
func (h *AuthHTTP) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, mine := h.ownsSession(r); mine {
			if err := h.auth.Logout(r.Context()); err != nil {
				writeErr(w, h.log, err)
				return
			}
		}
		middleware.ClearSession(w)
		w.WriteHeader(http.StatusNoContent)
	}
}

// Me returns the identity carried by the session cookie.
func (h *AuthHTTP) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := middleware.Claims(r.Context())
		if !ok {
			utils.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		utils.JSON(w, http.StatusOK, c.User())
	}
}

// Session exposes the adapter's persisted session as tracked by the auth
// store, to its owner only.
func (h *AuthHTTP) Session() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, mine := h.ownsSession(r)
		if !mine {
			utils.Error(w, http.StatusNotFound, "no session for this user")
			return
		}
		utils.JSON(w, http.StatusOK, st)
	}
}
