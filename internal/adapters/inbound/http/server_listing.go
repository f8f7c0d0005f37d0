package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kvartira/listinghub/internal/domain"
	"github.com/kvartira/listinghub/internal/usecases"
)

const (
	defaultPage        = 1
	defaultPageSize    = 20
	defaultSimilarSize = 5
)

func (api ListingHubServer) CreateListing(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, toError(err))
		return
	}

	var req CreateListingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := ErrorResp{}
		errResp.Error.Code = ErrorCode_BadRequest
		errResp.Error.Message = fmt.Sprintf("invalid request body: %v", err)

		respondError(w, errResp)
		return
	}

	listing, err := api.CreateListingUseCase.Execute(r.Context(), actor, usecases.CreateListingParams{
		Title:           req.Title,
		Description:     req.Description,
		PropertyType:    domain.PropertyType(req.PropertyType),
		TransactionType: domain.TransactionType(req.TransactionType),
		Location: domain.Location{
			Province: req.Location.Province,
			City:     req.Location.City,
			District: req.Location.District,
		},
		Bedrooms:  req.Bedrooms,
		Bathrooms: req.Bathrooms,
		Features:  req.Features,
		Price:     req.Price,
	})
	if err != nil {
		api.Logger.Printf("Error creating listing: %v", err)
		respondError(w, toError(err))
		return
	}

	respondJSON(w, http.StatusCreated, toListing(listing))
}

func (api ListingHubServer) GetListing(w http.ResponseWriter, r *http.Request) {
	listingID, ok := listingIDFromRequest(w, r)
	if !ok {
		return
	}

	listing, err := api.GetListingUseCase.Execute(r.Context(), listingID)
	if err != nil {
		api.Logger.Printf("Error getting listing: %v", err)
		respondError(w, toError(err))
		return
	}

	respondJSON(w, http.StatusOK, toListing(listing))
}

func (api ListingHubServer) ListListings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := defaultPage
	if raw := query.Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, toError(domain.NewValidationErr("page must be an integer")))
			return
		}
		page = parsed
	}

	pageSize := defaultPageSize
	if raw := query.Get("page_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, toError(domain.NewValidationErr("page_size must be an integer")))
			return
		}
		pageSize = parsed
	}

	var opts []domain.ListListingsOption
	if raw := query.Get("status"); raw != "" {
		opts = append(opts, domain.WithStatus(domain.ListingStatus(raw)))
	}
	if raw := query.Get("transaction_type"); raw != "" {
		opts = append(opts, domain.WithTransactionType(domain.TransactionType(raw)))
	}
	now := api.TimeProvider.Now()
	if raw := query.Get("published_after"); raw != "" {
		t, ok := domain.ParseFilterTime(raw, now, time.UTC)
		if !ok {
			respondError(w, toError(domain.NewValidationErr("published_after is not a recognizable date")))
			return
		}
		opts = append(opts, domain.WithPublishedAfter(t))
	}
	if raw := query.Get("published_before"); raw != "" {
		t, ok := domain.ParseFilterTime(raw, now, time.UTC)
		if !ok {
			respondError(w, toError(domain.NewValidationErr("published_before is not a recognizable date")))
			return
		}
		opts = append(opts, domain.WithPublishedBefore(t))
	}

	listings, hasMore, err := api.ListListingsUseCase.Execute(r.Context(), page, pageSize, opts...)
	if err != nil {
		api.Logger.Printf("Error listing listings: %v", err)
		respondError(w, toError(err))
		return
	}

	resp := ListListingsResp{
		Items: []ListingResp{},
		Page:  page,
	}
	for _, listing := range listings {
		resp.Items = append(resp.Items, toListing(listing))
	}
	if hasMore {
		nextPage := page + 1
		resp.NextPage = &nextPage
	}
	if page > 1 {
		prevPage := page - 1
		resp.PreviousPage = &prevPage
	}

	respondJSON(w, http.StatusOK, resp)
}

func (api ListingHubServer) UpdateListing(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, toError(err))
		return
	}

	listingID, ok := listingIDFromRequest(w, r)
	if !ok {
		return
	}

	var req UpdateListingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := ErrorResp{}
		errResp.Error.Code = ErrorCode_BadRequest
		errResp.Error.Message = fmt.Sprintf("invalid request body: %v", err)

		respondError(w, errResp)
		return
	}

	params := usecases.UpdateListingParams{
		Title:           req.Title,
		Description:     req.Description,
		PropertyType:    (*domain.PropertyType)(req.PropertyType),
		TransactionType: (*domain.TransactionType)(req.TransactionType),
		Bedrooms:        req.Bedrooms,
		Bathrooms:       req.Bathrooms,
		Features:        req.Features,
		Price:           req.Price,
	}
	if req.Location != nil {
		params.Location = &domain.Location{
			Province: req.Location.Province,
			City:     req.Location.City,
			District: req.Location.District,
		}
	}

	listing, err := api.UpdateListingUseCase.Execute(r.Context(), actor, listingID, params)
	if err != nil {
		api.Logger.Printf("Error updating listing: %v", err)
		respondError(w, toError(err))
		return
	}

	respondJSON(w, http.StatusOK, toListing(listing))
}

func (api ListingHubServer) PublishListing(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, toError(err))
		return
	}

	listingID, ok := listingIDFromRequest(w, r)
	if !ok {
		return
	}

	listing, err := api.PublishListingUseCase.Execute(r.Context(), actor, listingID)
	if err != nil {
		api.Logger.Printf("Error publishing listing: %v", err)
		respondError(w, toError(err))
		return
	}

	respondJSON(w, http.StatusOK, toListing(listing))
}

func (api ListingHubServer) transitionHandler(kind domain.TransitionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			respondError(w, toError(err))
			return
		}

		listingID, ok := listingIDFromRequest(w, r)
		if !ok {
			return
		}

		listing, err := api.TransitionListingUseCase.Execute(r.Context(), actor, listingID, kind)
		if err != nil {
			api.Logger.Printf("Error applying %s to listing: %v", kind, err)
			respondError(w, toError(err))
			return
		}

		respondJSON(w, http.StatusOK, toListing(listing))
	}
}

func (api ListingHubServer) FindSimilarListings(w http.ResponseWriter, r *http.Request) {
	listingID, ok := listingIDFromRequest(w, r)
	if !ok {
		return
	}

	k := defaultSimilarSize
	if raw := r.URL.Query().Get("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, toError(domain.NewValidationErr("k must be an integer")))
			return
		}
		k = parsed
	}

	summaries, err := api.FindSimilarListingsUseCase.Execute(r.Context(), listingID, k)
	if err != nil {
		api.Logger.Printf("Error finding similar listings: %v", err)
		respondError(w, toError(err))
		return
	}

	resp := SimilarListingsResp{Items: []SimilarListingResp{}}
	for _, summary := range summaries {
		resp.Items = append(resp.Items, toSimilarListing(summary))
	}

	respondJSON(w, http.StatusOK, resp)
}

func listingIDFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	listingID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, toError(domain.NewValidationErr("listing id is not a UUID")))
		return uuid.Nil, false
	}
	return listingID, true
}
