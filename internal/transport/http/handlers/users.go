package http_handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vlehub/user-service/internal/application/users"
	"github.com/vlehub/user-service/internal/domain"
	"github.com/vlehub/user-service/internal/logger"
	"github.com/vlehub/user-service/internal/transport/http/dto"
	"github.com/vlehub/user-service/internal/transport/http/response"
	"github.com/vlehub/user-service/internal/transport/http/validate"
)

type UsersHandler struct {
	svc *users.Service
}

func NewUsersHandler(svc *users.Service) *UsersHandler {
	return &UsersHandler{svc: svc}
}

// List handles GET /users?search=&page=&page_size=. Non-numeric page
// parameters fall back to defaults rather than failing the request.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := 1
	if raw := q.Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			page = n
		}
	}
	pageSize := users.DefaultPageSize
	if raw := q.Get("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			pageSize = n
		}
	}

	res, err := h.svc.List(r.Context(), q.Get("search"), page, pageSize)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	views := make([]dto.UserView, 0, len(res.Users))
	for _, u := range res.Users {
		views = append(views, dto.NewUserView(u))
	}

	response.OK(w, dto.UserListData{
		Users: views,
		Pagination: dto.Pagination{
			TotalCount:  res.TotalCount,
			PageCount:   res.PageCount,
			CurrentPage: res.CurrentPage,
			HasNext:     res.HasNext,
			HasPrevious: res.HasPrevious,
		},
	})
}

func (h *UsersHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	d, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	data := dto.UserDetailData{UserView: dto.NewUserView(d.User)}
	if d.Profile != nil {
		data.Profile = dto.NewProfileView(*d.Profile)
	}

	response.OK(w, data)
}

// Update handles PUT and PATCH identically: only the known mutable
// fields are applied, everything else in the payload is ignored.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UserUpdateRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.Update(r.Context(), id, users.UpdateFields{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		IsActive:  req.IsActive,
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", u.ID).
		Msg("user_updated")

	response.OK(w, dto.NewUserView(u))
}

// Deactivate soft-deletes a user. The repository reports a single
// boolean, so a missing user and an already-inactive user share the
// same 404 response.
func (h *UsersHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ok, err := h.svc.Deactivate(r.Context(), id)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	if !ok {
		response.WriteError(w, r, domain.New(domain.KindNotFound, "user_not_found", "User not found or already inactive"))
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", id).
		Msg("user_deactivated")

	response.OK(w, dto.MessageData{Message: "User deactivated successfully"})
}

func (h *UsersHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	var req dto.BulkOperationRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.BulkOperation(r.Context(), req.UserIDs, req.Operation)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("operation", req.Operation).
		Int("affected", res.SuccessCount).
		Int("requested", res.TotalRequested).
		Msg("bulk_user_operation")

	response.OK(w, dto.BulkOperationData{
		Message:        fmt.Sprintf("Successfully %sd %d users", req.Operation, res.SuccessCount),
		AffectedUsers:  res.SuccessCount,
		TotalRequested: res.TotalRequested,
	})
}
