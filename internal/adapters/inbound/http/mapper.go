package http

import (
	"github.com/kvartira/listinghub/internal/domain"
)

func toError(err error) ErrorResp {
	errResp := ErrorResp{}
	switch e := err.(type) {
	case *domain.ValidationErr:
		errResp.Error.Code = ErrorCode_BadRequest
		errResp.Error.Message = e.Error()
	case *domain.NotFoundErr:
		errResp.Error.Code = ErrorCode_NotFound
		errResp.Error.Message = e.Error()
	case *domain.NotOwnerErr:
		errResp.Error.Code = ErrorCode_Forbidden
		errResp.Error.Message = e.Error()
	case *domain.InvalidTransitionErr:
		errResp.Error.Code = ErrorCode_Conflict
		errResp.Error.Message = e.Error()
	case *domain.IncompleteListingErr:
		errResp.Error.Code = ErrorCode_IncompleteListing
		errResp.Error.Message = "listing is not ready to publish"
		errResp.Error.Details = e.Violations
	case *domain.ProviderUnavailableErr, *domain.ProviderTimeoutErr:
		errResp.Error.Code = ErrorCode_ProviderUnavailable
		errResp.Error.Message = err.Error()
	default:
		errResp.Error.Code = ErrorCode_InternalError
		errResp.Error.Message = "internal server error"
	}
	return errResp
}

func toListing(l domain.Listing) ListingResp {
	return ListingResp{
		ID:              l.ID,
		AgentID:         l.AgentID,
		Status:          string(l.Status),
		Title:           l.Title,
		Description:     l.Description,
		PropertyType:    string(l.PropertyType),
		TransactionType: string(l.TransactionType),
		Location: LocationResp{
			Province: l.Location.Province,
			City:     l.Location.City,
			District: l.Location.District,
		},
		Bedrooms:    l.Bedrooms,
		Bathrooms:   l.Bathrooms,
		Features:    l.Features,
		Price:       l.Price,
		PublishedAt: l.PublishedAt,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func toSimilarListing(s domain.ListingSummary) SimilarListingResp {
	return SimilarListingResp{
		ID:              s.ID,
		Title:           s.Title,
		PropertyType:    string(s.PropertyType),
		TransactionType: string(s.TransactionType),
		Location: LocationResp{
			Province: s.Location.Province,
			City:     s.Location.City,
			District: s.Location.District,
		},
		Price:       s.Price,
		Score:       s.Score,
		PublishedAt: s.PublishedAt,
	}
}
