package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/avoronin/linkcut/internal/models"
	"github.com/avoronin/linkcut/internal/service"
)

type linkListResponse struct {
	Data       []linkResponse    `json:"data"`
	Pagination models.Pagination `json:"pagination"`
}

func (h *Handler) ListLinksHandler(rw http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ownerID(rw, r)
	if !ok {
		return
	}

	filter, err := parseLinkFilter(r)
	if err != nil {
		h.writeError(rw, err)
		return
	}

	links, pagination, err := h.links.List(r.Context(), ownerID, filter)
	if err != nil {
		h.writeError(rw, err)
		return
	}

	data := make([]linkResponse, len(links))
	for i, link := range links {
		data[i] = h.newLinkResponse(link)
	}

	h.writeJSON(rw, http.StatusOK, linkListResponse{Data: data, Pagination: pagination})
}

func parseLinkFilter(r *http.Request) (models.LinkFilter, error) {
	query := r.URL.Query()

	filter := models.LinkFilter{
		Status: models.LinkStatus(query.Get("status")),
	}

	if raw := query.Get("tags"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			tagID, err := uuid.Parse(strings.TrimSpace(part))
			if err != nil {
				return models.LinkFilter{}, fmt.Errorf("%w: invalid tag id %q", service.ErrValidation, part)
			}
			filter.TagIDs = append(filter.TagIDs, tagID)
		}
	}

	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return models.LinkFilter{}, fmt.Errorf("%w: invalid page %q", service.ErrValidation, raw)
		}
		filter.Page = page
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return models.LinkFilter{}, fmt.Errorf("%w: invalid limit %q", service.ErrValidation, raw)
		}
		filter.Limit = limit
	}

	return filter, nil
}
