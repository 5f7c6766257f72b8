package api

import (
	"net/http"

	"github.com/YouWantToPinch/hearth-api/internal/database"
)

func (cfg *APIConfig) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	filter := database.CategoryFilter{
		Search: r.URL.Query().Get("search"),
	}
	if raw := r.URL.Query().Get("isActive"); raw != "" {
		active, err := parseBoolFromString(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid isActive filter", err)
			return
		}
		filter.Active = &active
	}

	dbCategories, err := cfg.store.ListCategories(r.Context(), filter)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, msgInternal, err)
		return
	}

	categories := make([]Category, 0, len(dbCategories))
	for _, c := range dbCategories {
		categories = append(categories, categoryFromDB(c))
	}
	respondWithJSON(w, http.StatusOK, newListResponse(categories))
}

func (cfg *APIConfig) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	pathCategoryID, err := parseIDFromPath("category_id", r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid category id", err)
		return
	}

	dbCategory, err := cfg.store.GetCategory(r.Context(), pathCategoryID)
	if err != nil {
		respondWithStoreError(w, "Category", err)
		return
	}
	respondWithJSON(w, http.StatusOK, itemResponse[Category]{Success: true, Data: categoryFromDB(dbCategory)})
}

func (cfg *APIConfig) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	rqPayload, err := decodePayload[categoryPayload](r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if errs := rqPayload.validate(false); errs.any() {
		respondWithValidationErrors(w, msgValidationFailed, errs)
		return
	}

	params := database.CreateCategoryParams{
		Name:     *rqPayload.Name,
		IsActive: true,
	}
	if rqPayload.Description != nil {
		params.Description = *rqPayload.Description
	}
	if rqPayload.Color != nil {
		params.Color = *rqPayload.Color
	}
	if rqPayload.Icon != nil {
		params.Icon = *rqPayload.Icon
	}
	if rqPayload.IsActive != nil {
		params.IsActive = *rqPayload.IsActive
	}

	dbCategory, err := cfg.store.CreateCategory(r.Context(), params)
	if err != nil {
		respondWithStoreError(w, "Category", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, itemResponse[Category]{
		Success: true,
		Message: "Category created successfully",
		Data:    categoryFromDB(dbCategory),
	})
}

func (cfg *APIConfig) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	pathCategoryID, err := parseIDFromPath("category_id", r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid category id", err)
		return
	}

	rqPayload, err := decodePayload[categoryPayload](r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if errs := rqPayload.validate(true); errs.any() {
		respondWithValidationErrors(w, msgValidationFailed, errs)
		return
	}

	dbCategory, err := cfg.store.UpdateCategory(r.Context(), database.UpdateCategoryParams{
		ID:          pathCategoryID,
		Name:        rqPayload.Name,
		Description: rqPayload.Description,
		Color:       rqPayload.Color,
		Icon:        rqPayload.Icon,
		IsActive:    rqPayload.IsActive,
	})
	if err != nil {
		respondWithStoreError(w, "Category", err)
		return
	}
	respondWithJSON(w, http.StatusOK, itemResponse[Category]{
		Success: true,
		Message: "Category updated successfully",
		Data:    categoryFromDB(dbCategory),
	})
}

func (cfg *APIConfig) handleToggleCategory(w http.ResponseWriter, r *http.Request) {
	pathCategoryID, err := parseIDFromPath("category_id", r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid category id", err)
		return
	}

	dbCategory, err := cfg.store.ToggleCategory(r.Context(), pathCategoryID)
	if err != nil {
		respondWithStoreError(w, "Category", err)
		return
	}
	respondWithJSON(w, http.StatusOK, itemResponse[Category]{Success: true, Data: categoryFromDB(dbCategory)})
}

func (cfg *APIConfig) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	pathCategoryID, err := parseIDFromPath("category_id", r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid category id", err)
		return
	}

	if err := cfg.store.DeleteCategory(r.Context(), pathCategoryID); err != nil {
		respondWithStoreError(w, "Category", err)
		return
	}
	respondWithMessage(w, http.StatusOK, "Category deleted successfully")
}
