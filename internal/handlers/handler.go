package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"orgadmin/internal/auth"
	"orgadmin/internal/cache"
	"orgadmin/internal/database"
	"orgadmin/internal/response"
	"orgadmin/internal/store"

	"github.com/jinzhu/inflection"
	"github.com/rs/zerolog"
)

var (
	SendSuccess          = response.SendSuccess
	SendError            = response.SendError
	SendSuccessNoData    = response.SendSuccessNoData
	SendPaginatedSuccess = response.SendPaginatedSuccess
)

// Handler serves the JSON API. Business rules live in the stores; handlers
// decode, validate and map errors to status codes.
type Handler struct {
	stores       *store.Stores
	exec         database.Executor
	cache        cache.Cache
	tokens       *auth.TokenService
	structureTTL time.Duration
	secureCookie bool
}

type Config struct {
	Stores   *store.Stores
	Executor database.Executor
	Cache    cache.Cache
	Tokens   *auth.TokenService

	// StructureTTL bounds how long tree and stats responses are cached.
	// Default: 5 minutes
	StructureTTL time.Duration

	// SecureCookie marks the refresh token cookie Secure.
	SecureCookie bool
}

func New(cfg Config) *Handler {
	if cfg.StructureTTL == 0 {
		cfg.StructureTTL = 5 * time.Minute
	}
	return &Handler{
		stores:       cfg.Stores,
		exec:         cfg.Executor,
		cache:        cfg.Cache,
		tokens:       cfg.Tokens,
		structureTTL: cfg.StructureTTL,
		secureCookie: cfg.SecureCookie,
	}
}

// sendStoreError maps store and database sentinels to status codes. entity
// is the singular name used in the message.
func sendStoreError(w http.ResponseWriter, r *http.Request, err error, entity string) {
	log := zerolog.Ctx(r.Context())
	switch {
	case errors.Is(err, store.ErrNotFound):
		SendError(w, http.StatusNotFound, title(entity)+" not found")
	case errors.Is(err, store.ErrAlreadyExists):
		SendError(w, http.StatusConflict, title(entity)+" already exists")
	case errors.Is(err, store.ErrInUse):
		SendError(w, http.StatusConflict, fmt.Sprintf("%s is still referenced by other records", title(entity)))
	case errors.Is(err, store.ErrInvalidReference):
		log.Debug().Err(err).Msg("Invalid reference")
		SendError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s reference", entity))
	case errors.Is(err, database.ErrUnavailable):
		log.Error().Err(err).Msg("Database unavailable")
		SendError(w, http.StatusServiceUnavailable, "Database unavailable")
	default:
		log.Error().Err(err).Str("entity", entity).Msg("Store operation failed")
		SendError(w, http.StatusInternalServerError, "Error processing "+inflection.Plural(entity))
	}
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func retrieved(entity string) string { return title(entity) + " retrieved successfully" }

func retrievedAll(entity string) string {
	return title(inflection.Plural(entity)) + " retrieved successfully"
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// boolQuery parses an optional boolean query parameter.
func boolQuery(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a boolean", name)
	}
	return &b, nil
}

// listAll reports whether the caller asked for the unpaginated listing.
func listAll(r *http.Request) bool {
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	return all
}

func actor(r *http.Request) string {
	if p, ok := auth.PrincipalFrom(r.Context()); ok {
		return p.Actor()
	}
	return ""
}

func actorPtr(r *http.Request) *string {
	if a := actor(r); a != "" {
		return &a
	}
	return nil
}

func valueOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

type statusRequest struct {
	IsActive *bool `json:"is_active"`
}

func decodeStatus(w http.ResponseWriter, r *http.Request) (bool, bool) {
	var req statusRequest
	if err := decode(r, &req); err != nil {
		SendError(w, http.StatusBadRequest, "Invalid request body")
		return false, false
	}
	if req.IsActive == nil {
		SendError(w, http.StatusBadRequest, "is_active is required")
		return false, false
	}
	return *req.IsActive, true
}
