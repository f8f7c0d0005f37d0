package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/kvartira/listinghub/internal/domain"
)

const (
	actorIDHeader   = "X-Actor-Id"
	actorRoleHeader = "X-Actor-Role"
)

// actorFromRequest resolves the acting identity from the request headers.
// Gateways in front of this service are expected to have authenticated the
// caller and stamped these headers.
func actorFromRequest(r *http.Request) (domain.Actor, error) {
	rawID := strings.TrimSpace(r.Header.Get(actorIDHeader))
	if rawID == "" {
		return domain.Actor{}, domain.NewValidationErr("missing " + actorIDHeader + " header")
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return domain.Actor{}, domain.NewValidationErr("invalid " + actorIDHeader + " header: not a UUID")
	}

	return domain.Actor{
		ID:    id,
		Admin: strings.EqualFold(r.Header.Get(actorRoleHeader), "admin"),
	}, nil
}
