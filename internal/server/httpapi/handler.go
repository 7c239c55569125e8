package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/wormkeeper/internal/common"
	"github.com/dmitrijs2005/wormkeeper/internal/logging"
	"github.com/dmitrijs2005/wormkeeper/internal/server/backup"
	"github.com/dmitrijs2005/wormkeeper/internal/server/users"
)

type Handlers struct {
	users        *users.Service
	backup       *backup.Service
	logger       logging.Logger
	maxBodyBytes int64
	debug        bool
}

func NewHandlers(us *users.Service, bs *backup.Service, logger logging.Logger, maxBodyBytes int64, debug bool) *Handlers {
	return &Handlers{
		users:        us,
		backup:       bs,
		logger:       logger.With("module", "httpapi"),
		maxBodyBytes: maxBodyBytes,
		debug:        debug,
	}
}

type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

var statusOK = map[string]string{"status": "ok"}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// errorCode turns an error into the stable kind exposed in debug responses.
func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedMediaType):
		return "UNSUPPORTED_MEDIA_TYPE"
	case errors.Is(err, ErrPayloadTooLarge):
		return "PAYLOAD_TOO_LARGE"
	case errors.Is(err, ErrInvalidJSON), errors.Is(err, common.ErrorCorrupted):
		return "INVALID_JSON"
	case errors.Is(err, common.ErrorInaccessible):
		return "USER_DATA_INACCESSIBLE"
	case errors.Is(err, common.ErrorNotFound):
		return "NOT_FOUND"
	case errors.Is(err, common.ErrorUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, common.ErrorAlreadyExists):
		return "ALREADY_EXISTS"
	case errors.Is(err, common.ErrorStorageFailure):
		return "STORAGE_FAILURE"
	case errors.Is(err, common.ErrorMissingCredentials),
		errors.Is(err, common.ErrorFieldTooShort),
		errors.Is(err, common.ErrorInvalidUsername),
		errors.Is(err, common.ErrorInvalidDataObject),
		errors.Is(err, common.ErrorDataTooLarge):
		return "VALIDATION"
	default:
		return "INTERNAL"
	}
}

// writeError emits the minimal {message} body, enriched with code/detail when
// debug responses are enabled.
func (h *Handlers) writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := errorResponse{Message: message}
	if h.debug && err != nil {
		resp.Code = errorCode(err)
		resp.Detail = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDecodeError maps decoder failures. Anything the decoder did not
// classify is a bad body.
func (h *Handlers) writeDecodeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnsupportedMediaType):
		h.writeError(w, http.StatusUnsupportedMediaType, "Unsupported media type (expect application/json)", err)
	case errors.Is(err, ErrPayloadTooLarge):
		h.writeError(w, http.StatusRequestEntityTooLarge, "Payload too large", err)
	case errors.Is(err, ErrInvalidJSON):
		h.writeError(w, http.StatusBadRequest, "Invalid JSON", err)
	default:
		h.writeError(w, http.StatusBadRequest, "Invalid body", err)
	}
}

// Health reports liveness. It never depends on storage state.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r, h.maxBodyBytes)
	if err != nil {
		h.writeDecodeError(w, err)
		return
	}

	username := body.Username
	if username == "" {
		username = body.User
	}
	password := body.Password
	if password == "" {
		password = body.Pass
	}

	err = h.users.Register(r.Context(), username, password, body.Data)
	if err == nil {
		h.logger.Info(r.Context(), "user registered", "username", username)
		writeJSON(w, http.StatusCreated, statusOK)
		return
	}

	switch {
	case errors.Is(err, common.ErrorMissingCredentials):
		h.writeError(w, http.StatusBadRequest, "Missing username or password", err)
	case errors.Is(err, common.ErrorFieldTooShort):
		h.writeError(w, http.StatusBadRequest, "Too short (min 3 chars)", err)
	case errors.Is(err, common.ErrorInvalidUsername):
		h.writeError(w, http.StatusBadRequest, "Invalid username", err)
	case errors.Is(err, common.ErrorInvalidDataObject):
		h.writeError(w, http.StatusBadRequest, "Invalid data object", err)
	case errors.Is(err, common.ErrorDataTooLarge):
		h.writeError(w, http.StatusRequestEntityTooLarge, "Data too large", err)
	case errors.Is(err, common.ErrorAlreadyExists):
		h.writeError(w, http.StatusConflict, "User already exists", err)
	case errors.Is(err, common.ErrorCorrupted):
		h.writeError(w, http.StatusConflict, "Corrupted existing user data", err)
	case errors.Is(err, common.ErrorInaccessible):
		h.logger.Error(r.Context(), "register: storage inaccessible", "error", err.Error())
		h.writeError(w, http.StatusInternalServerError, "User storage not accessible", err)
	case errors.Is(err, common.ErrorStorageFailure):
		h.logger.Error(r.Context(), "register: persist failed", "error", err.Error())
		h.writeError(w, http.StatusInternalServerError, "Failed to persist user", err)
	default:
		h.logger.Error(r.Context(), "register failed", "error", err.Error())
		h.writeError(w, http.StatusInternalServerError, "Internal server error", err)
	}
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r, h.maxBodyBytes)
	if err != nil {
		h.writeDecodeError(w, err)
		return
	}

	data, err := h.users.Login(r.Context(), body.Username, body.Password)
	if err == nil {
		// the stored blob is the response body: this is the client's full
		// game-state restore
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	h.writeAuthFlowError(w, r, "login", err)
}

func (h *Handlers) Save(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r, h.maxBodyBytes)
	if err != nil {
		h.writeDecodeError(w, err)
		return
	}

	err = h.users.Save(r.Context(), body.Username, body.Password, body.Data)
	if err == nil {
		writeJSON(w, http.StatusOK, statusOK)
		return
	}

	if errors.Is(err, common.ErrorInvalidDataObject) {
		h.writeError(w, http.StatusBadRequest, "Invalid data object", err)
		return
	}
	h.writeAuthFlowError(w, r, "save", err)
}

// writeAuthFlowError covers the error surface login and save share: input
// validation, record lookup and password verification.
func (h *Handlers) writeAuthFlowError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, common.ErrorMissingCredentials):
		h.writeError(w, http.StatusBadRequest, "Missing username or password", err)
	case errors.Is(err, common.ErrorInvalidUsername):
		h.writeError(w, http.StatusBadRequest, "Invalid username", err)
	case errors.Is(err, common.ErrorNotFound):
		h.writeError(w, http.StatusNotFound, "User not found", err)
	case errors.Is(err, common.ErrorUnauthorized):
		h.writeError(w, http.StatusUnauthorized, "Invalid credentials", err)
	case errors.Is(err, common.ErrorCorrupted):
		h.logger.Error(r.Context(), op+": corrupted record", "error", err.Error())
		h.writeError(w, http.StatusInternalServerError, "Corrupted user data", err)
	case errors.Is(err, common.ErrorInaccessible):
		h.logger.Error(r.Context(), op+": storage inaccessible", "error", err.Error())
		h.writeError(w, http.StatusInternalServerError, "User storage not accessible", err)
	case errors.Is(err, common.ErrorStorageFailure):
		h.logger.Error(r.Context(), op+": persist failed", "error", err.Error())
		h.writeError(w, http.StatusInternalServerError, "Failed to persist user", err)
	default:
		h.logger.Error(r.Context(), op+" failed", "error", err.Error())
		h.writeError(w, http.StatusInternalServerError, "Internal server error", err)
	}
}

func (h *Handlers) Backup(w http.ResponseWriter, r *http.Request) {
	count, err := h.backup.BackupAll(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "backup failed", "error", err.Error())
		h.writeError(w, http.StatusInternalServerError, "Backup failed", err)
		return
	}
	h.logger.Info(r.Context(), "backup complete", "records", count)
	writeJSON(w, http.StatusOK, statusOK)
}

func (h *Handlers) Restore(w http.ResponseWriter, r *http.Request) {
	count, err := h.backup.RestoreAll(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "restore failed", "error", err.Error())
		h.writeError(w, http.StatusInternalServerError, "Restore failed", err)
		return
	}
	h.logger.Info(r.Context(), "restore complete", "records", count)
	writeJSON(w, http.StatusOK, statusOK)
}

func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Message: "Not found"})
}
