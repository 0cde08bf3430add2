package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/api/middleware"
	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/app/service"
	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/common"
	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/domain/model"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	MsgMethodError  = "Failed to perform this action"
	MsgTodoNotFound = "Todo not found."
	MsgNoTodosFound = "No TODOs found to display."
	MsgNeedToLogin  = "You need to login to perform this action."
	MsgTodoRequired = "Todo is required."
)

type TodoHandler struct {
	todoService *service.TodoService
}

func NewTodoHandler(ts *service.TodoService) *TodoHandler {
	return &TodoHandler{todoService: ts}
}

// RegisterRoutes mounts the todo endpoints. All of them require an
// authenticated caller; the router applies the authenticator.
func (h *TodoHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listTodos)
	r.Post("/", h.createTodo)
	// The path parameter is ignored; results are always the caller's own.
	r.Get("/user/{userId}", h.listTodos)
	r.Get("/{id}", h.getTodo)
	r.Put("/{id}", h.updateTodo)
	r.Delete("/{id}", h.deleteTodo)
}

// respondTodoError writes {"message": ...}. notFoundMessage is used for
// common.ErrNotFound; unexpected failures become 500 with the cause in "error".
func respondTodoError(w http.ResponseWriter, r *http.Request, err error, notFoundMessage string) {
	status := common.HTTPStatusFromError(err)
	switch {
	case status == http.StatusInternalServerError:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg(MsgMethodError)
		common.RespondWithJSON(w, status, common.ErrorResponse{Message: MsgMethodError, Error: err.Error()})
	case errors.Is(err, common.ErrNeedToLogin):
		common.RespondWithMessage(w, status, MsgNeedToLogin)
	case errors.Is(err, common.ErrTodoRequired):
		common.RespondWithMessage(w, status, MsgTodoRequired)
	case errors.Is(err, common.ErrNotFound):
		common.RespondWithMessage(w, status, notFoundMessage)
	default:
		common.RespondWithMessage(w, status, err.Error())
	}
}

// callerID is the authenticated user id, or "" when the request carries none.
func callerID(r *http.Request) string {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	return userID
}

func (h *TodoHandler) listTodos(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		respondTodoError(w, r, common.ErrNeedToLogin, "")
		return
	}
	filter, err := parseTodoFilter(r.URL.Query())
	if err != nil {
		respondTodoError(w, r, err, "")
		return
	}

	todos, err := h.todoService.List(r.Context(), userID, filter)
	if err != nil {
		respondTodoError(w, r, err, MsgNoTodosFound)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, todos)
}

func (h *TodoHandler) getTodo(w http.ResponseWriter, r *http.Request) {
	todo, err := h.todoService.Get(r.Context(), callerID(r), chi.URLParam(r, "id"))
	if err != nil {
		respondTodoError(w, r, err, MsgTodoNotFound)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) createTodo(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		respondTodoError(w, r, common.ErrNeedToLogin, "")
		return
	}

	var req service.CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if isEmptyBody(err) {
			respondTodoError(w, r, common.ErrTodoRequired, "")
			return
		}
		common.RespondWithMessage(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	id, err := h.todoService.Create(r.Context(), userID, req)
	if err != nil {
		respondTodoError(w, r, err, MsgTodoNotFound)
		return
	}
	common.RespondWithMessage(w, http.StatusCreated, fmt.Sprintf("Successfully created a new todo with id %s", id))
}

func (h *TodoHandler) updateTodo(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		respondTodoError(w, r, common.ErrNeedToLogin, "")
		return
	}

	var patch model.TodoPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil && !isEmptyBody(err) {
		common.RespondWithMessage(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	todoID := chi.URLParam(r, "id")
	if err := h.todoService.Update(r.Context(), userID, todoID, patch); err != nil {
		respondTodoError(w, r, err, MsgTodoNotFound)
		return
	}
	zerolog.Ctx(r.Context()).Debug().Str("todo_id", todoID).Msg("Successfully updated todo")
	common.RespondNoContent(w)
}

func (h *TodoHandler) deleteTodo(w http.ResponseWriter, r *http.Request) {
	todoID := chi.URLParam(r, "id")
	if err := h.todoService.Delete(r.Context(), callerID(r), todoID); err != nil {
		respondTodoError(w, r, err, MsgTodoNotFound)
		return
	}
	zerolog.Ctx(r.Context()).Debug().Str("todo_id", todoID).Msg("Successfully removed todo")
	common.RespondNoContent(w)
}
