// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/solarguardian/internal/models"
	"github.com/tomtom215/solarguardian/internal/tree"
)

// PrefixQuery is the query of the list endpoints.
type PrefixQuery struct {
	Prefix string `query:"prefix" validate:"omitempty,max=512,treeprefix"`
}

func parsePrefix(r *http.Request) (tree.Path, *models.APIError) {
	q := PrefixQuery{Prefix: r.URL.Query().Get("prefix")}
	if apiErr := validateRequest(&q); apiErr != nil {
		return "", apiErr
	}
	return tree.Path(q.Prefix), nil
}

// Nodes lists node metadata under ?prefix=.
func (h *Handler) Nodes(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	prefix, apiErr := parsePrefix(r)
	if apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	nodes, err := h.store.ListNodes(r.Context(), prefix)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if nodes == nil {
		nodes = []tree.Node{}
	}
	respondSuccess(w, http.StatusOK, models.NodeList{Prefix: prefix.String(), Count: len(nodes), Nodes: nodes}, start)
}

// States lists current values under ?prefix=.
func (h *Handler) States(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	prefix, apiErr := parsePrefix(r)
	if apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	states, err := h.store.ListStates(r.Context(), prefix)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if states == nil {
		states = []tree.State{}
	}
	respondSuccess(w, http.StatusOK, models.StateList{Prefix: prefix.String(), Count: len(states), States: states}, start)
}

// State returns the value at {path}.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	path, err := tree.ParsePath(chi.URLParam(r, "path"))
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}

	state, err := h.store.GetState(r.Context(), path)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, state, start)
}

func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tree.ErrNotFound):
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "state not found", nil)
	case errors.Is(err, tree.ErrInvalidPath):
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
	case errors.Is(err, tree.ErrClosed):
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "store is closed", nil)
	default:
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "failed to read store", err)
	}
}
