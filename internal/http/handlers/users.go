package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/hongminglow/userdir/internal/auth"
	"github.com/hongminglow/userdir/internal/directory"
	"github.com/hongminglow/userdir/internal/http/respond"
	"github.com/hongminglow/userdir/internal/middleware"
	"github.com/hongminglow/userdir/internal/models"
	"github.com/hongminglow/userdir/internal/models/dto"
)

// Directory is the subset of the directory service used by the handlers.
type Directory interface {
	Create(ctx context.Context, in models.NewUser) (models.User, error)
	FindByLogin(ctx context.Context, login string) (models.User, error)
	List(ctx context.Context, params directory.ListParams) ([]models.User, error)
	Update(ctx context.Context, login string, patch models.UserPatch) (models.User, error)
	Delete(ctx context.Context, login string) error
}

// Credentials is the subset of the credential service used by the handlers.
type Credentials interface {
	Login(ctx context.Context, login, password string) (auth.Token, error)
}

// UsersHandler owns the /users endpoints.
type UsersHandler struct {
	users Directory
	creds Credentials
	log   *slog.Logger
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(users Directory, creds Credentials, log *slog.Logger) *UsersHandler {
	return &UsersHandler{users: users, creds: creds, log: log}
}

// Routes lists the user endpoints and whether each needs a bearer token.
func (h *UsersHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodPost, Path: "/users/register", Handler: h.handleRegister},
		{Method: http.MethodPost, Path: "/users/login", Handler: h.handleLogin},
		{Method: http.MethodGet, Path: "/users/profile/my", Handler: h.handleProfile, RequiresAuth: true},
		{Method: http.MethodGet, Path: "/users/all", Handler: h.handleList, RequiresAuth: true},
		{Method: http.MethodPut, Path: "/users/update", Handler: h.handleUpdate, RequiresAuth: true},
		{Method: http.MethodDelete, Path: "/users/delete", Handler: h.handleDelete, RequiresAuth: true},
	}
}

func (h *UsersHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	in, err := req.Validate()
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.users.Create(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, directory.ErrDuplicateLogin):
			respond.Error(w, http.StatusConflict, "user already exists")
		default:
			h.internalError(w, r, "create user", err)
		}
		return
	}

	respond.JSON(w, http.StatusCreated, "User registered successfully!", created)
}

func (h *UsersHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Login) == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "login and password are required")
		return
	}

	token, err := h.creds.Login(r.Context(), strings.TrimSpace(req.Login), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respond.Error(w, http.StatusUnauthorized, "invalid login or password")
			return
		}
		h.internalError(w, r, "login", err)
		return
	}

	respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{
		AccessToken: token.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   token.ExpiresAt,
	})
}

func (h *UsersHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.users.FindByLogin(r.Context(), identity.Login)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.internalError(w, r, "get profile", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", user)
}

func (h *UsersHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := intParam(q.Get("page"), directory.DefaultPage)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "page must be an integer")
		return
	}
	limit, err := intParam(q.Get("limit"), directory.DefaultLimit)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "limit must be an integer")
		return
	}

	users, err := h.users.List(r.Context(), directory.ListParams{
		FilterLogin: q.Get("filterLogin"),
		Page:        page,
		Limit:       limit,
	})
	if err != nil {
		h.internalError(w, r, "list users", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", users)
}

func (h *UsersHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	login := strings.TrimSpace(r.URL.Query().Get("login"))
	if login == "" {
		respond.Error(w, http.StatusBadRequest, "login query parameter is required")
		return
	}
	var req dto.UpdateUserRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	patch, err := req.Validate()
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.users.Update(r.Context(), login, patch)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.internalError(w, r, "update user", err)
		return
	}
	respond.JSON(w, http.StatusOK, "User updated successfully", updated)
}

func (h *UsersHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	login := strings.TrimSpace(r.URL.Query().Get("login"))
	if login == "" {
		respond.Error(w, http.StatusBadRequest, "login query parameter is required")
		return
	}

	if err := h.users.Delete(r.Context(), login); err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.internalError(w, r, "delete user", err)
		return
	}
	respond.JSON(w, http.StatusOK, "User deleted successfully", nil)
}

func (h *UsersHandler) internalError(w http.ResponseWriter, r *http.Request, action string, err error) {
	h.log.LogAttrs(r.Context(), slog.LevelError, action+" failed",
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
		slog.Any("error", err),
	)
	respond.Error(w, http.StatusInternalServerError, "failed to "+action)
}

func intParam(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
