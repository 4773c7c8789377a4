package transport

import (
	listingtransport "katze_backend/internal/listings/transport"
	"katze_backend/internal/moderation/service"
	reporttransport "katze_backend/internal/reports/transport"
	requesttransport "katze_backend/internal/requests/transport"
)

// TransitionRequest asks for a lifecycle move.
type TransitionRequest struct {
	To string `json:"to" validate:"notblank,max=40"`
}

// PageResponse is a moderation listing. Items holds listing, report or request
// responses depending on Kind.
type PageResponse struct {
	Kind  string `json:"kind"`
	Items any    `json:"items"`
	Total int    `json:"total"`
}

func ToPageResponse(p service.Page) PageResponse {
	return PageResponse{Kind: string(p.Kind), Items: items(p), Total: p.Len()}
}

// ToItemResponse returns the single entity of a transition result.
func ToItemResponse(p service.Page) any {
	switch {
	case len(p.Listings) > 0:
		return listingtransport.ToListingResponse(p.Listings[0])
	case len(p.Reports) > 0:
		return reporttransport.ToReportResponse(p.Reports[0])
	case len(p.Requests) > 0:
		return toRequestResponse(p.Requests[0])
	default:
		return nil
	}
}

func items(p service.Page) any {
	switch p.Kind {
	case service.KindListings:
		return listingtransport.ToListingListResponse(p.Listings).Items
	case service.KindReports:
		return reporttransport.ToReportListResponse(p.Reports).Items
	default:
		out := make([]requesttransport.RequestResponse, 0, len(p.Requests))
		for _, v := range p.Requests {
			out = append(out, toRequestResponse(v))
		}
		return out
	}
}

func toRequestResponse(v service.RequestView) requesttransport.RequestResponse {
	resp := requesttransport.ToRequestResponse(v.Request)
	if v.Listing != nil {
		resp.Listing = &requesttransport.ListingSummary{
			ID:    v.Listing.ID,
			Name:  v.Listing.Name,
			Photo: v.Listing.FirstPhoto(),
			State: string(v.Listing.State),
		}
	}
	return resp
}
