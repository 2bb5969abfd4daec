package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"orgadmin/internal/cache"
	"orgadmin/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Cached structure responses are keyed by a generation that every write
// replaces, so stale entries are never read again and expire on their own.
const structureGenerationKey = "structure:generation"

func (h *Handler) structureKey(ctx context.Context, parts ...string) string {
	gen, err := h.cache.Get(ctx, structureGenerationKey)
	if err != nil {
		gen = "0"
	}
	key := "structure:" + gen
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

func (h *Handler) invalidateStructure(ctx context.Context) {
	if err := h.cache.Set(ctx, structureGenerationKey, uuid.NewString(), 0); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Failed to invalidate structure cache")
	}
}

// cached returns the JSON stored under key, or computes, stores and returns it.
func (h *Handler) cached(ctx context.Context, key string, load func() (any, error)) (json.RawMessage, error) {
	if body, err := h.cache.Get(ctx, key); err == nil {
		return json.RawMessage(body), nil
	} else if !errors.Is(err, cache.ErrMiss) {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Structure cache read failed")
	}

	v, err := load()
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode structure: %w", err)
	}
	if err := h.cache.Set(ctx, key, string(body), h.structureTTL); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Structure cache write failed")
	}
	return body, nil
}

// GetStructure returns the company → branch → division → department tree,
// optionally for one company and restricted to active nodes.
func (h *Handler) GetStructure(w http.ResponseWriter, r *http.Request) {
	activeOnly, err := boolQuery(r, "active_only")
	if err != nil {
		SendError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts := store.TreeOptions{
		CompanyCode: r.URL.Query().Get("company_code"),
		ActiveOnly:  valueOr(activeOnly, false),
	}

	ctx := r.Context()
	key := h.structureKey(ctx, "tree", opts.CompanyCode, strconv.FormatBool(opts.ActiveOnly))
	body, err := h.cached(ctx, key, func() (any, error) {
		return h.stores.Structure.Tree(ctx, opts)
	})
	if err != nil {
		sendStoreError(w, r, err, "structure")
		return
	}
	SendSuccess(w, http.StatusOK, "Organization structure retrieved successfully", body)
}

func (h *Handler) GetStructureStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := h.cached(ctx, h.structureKey(ctx, "stats"), func() (any, error) {
		return h.stores.Structure.Stats(ctx)
	})
	if err != nil {
		sendStoreError(w, r, err, "structure")
		return
	}
	SendSuccess(w, http.StatusOK, "Structure statistics retrieved successfully", body)
}
