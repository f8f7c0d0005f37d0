package domain

// TransitionKind names one of the lifecycle operations a caller can request.
type TransitionKind string

const (
	TransitionKind_Publish TransitionKind = "publish"
	TransitionKind_Unlist  TransitionKind = "unlist"
	TransitionKind_Reserve TransitionKind = "reserve"
	TransitionKind_Release TransitionKind = "release"
	TransitionKind_Close   TransitionKind = "close"
)

// transitionGraph is the complete legal state graph. CLOSED is terminal: it
// has no outgoing edges.
var transitionGraph = map[ListingStatus]map[TransitionKind]ListingStatus{
	ListingStatus_DRAFT: {
		TransitionKind_Publish: ListingStatus_AVAILABLE,
	},
	ListingStatus_UNLISTED: {
		TransitionKind_Publish: ListingStatus_AVAILABLE,
	},
	ListingStatus_AVAILABLE: {
		TransitionKind_Unlist:  ListingStatus_UNLISTED,
		TransitionKind_Reserve: ListingStatus_RESERVED,
		TransitionKind_Close:   ListingStatus_CLOSED,
	},
	ListingStatus_RESERVED: {
		TransitionKind_Unlist:  ListingStatus_UNLISTED,
		TransitionKind_Release: ListingStatus_AVAILABLE,
		TransitionKind_Close:   ListingStatus_CLOSED,
	},
}

// targetStatus is the status each transition kind lands in, used to report
// the requested status when a transition is rejected.
var targetStatus = map[TransitionKind]ListingStatus{
	TransitionKind_Publish: ListingStatus_AVAILABLE,
	TransitionKind_Unlist:  ListingStatus_UNLISTED,
	TransitionKind_Reserve: ListingStatus_RESERVED,
	TransitionKind_Release: ListingStatus_AVAILABLE,
	TransitionKind_Close:   ListingStatus_CLOSED,
}

// Valid reports whether the transition kind is one of the known operations.
func (tk TransitionKind) Valid() bool {
	_, ok := targetStatus[tk]
	return ok
}

// NextStatus resolves the status a listing moves to when the given transition
// kind is applied from current. It fails with InvalidTransitionErr when the
// edge is not in the graph.
func NextStatus(current ListingStatus, kind TransitionKind) (ListingStatus, error) {
	next, ok := transitionGraph[current][kind]
	if !ok {
		return "", NewInvalidTransitionErr(current, targetStatus[kind])
	}
	return next, nil
}

// VectorizableStatus reports whether listings in the given status carry a
// maintained embedding. Drafts are not vectorized until first publish, and
// closed listings are terminal.
func VectorizableStatus(status ListingStatus) bool {
	switch status {
	case ListingStatus_AVAILABLE, ListingStatus_RESERVED, ListingStatus_UNLISTED:
		return true
	}
	return false
}
