package changerequest

type Status string

const (
	StatusDraft       Status = "draft"
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusImplemented Status = "implemented"
	StatusCancelled   Status = "cancelled"
)

// transitions is the full lifecycle graph. Anything absent here is an illegal
// move; terminal statuses have no outgoing edges.
var transitions = map[Status][]Status{
	StatusDraft:       {StatusSubmitted, StatusCancelled},
	StatusSubmitted:   {StatusUnderReview, StatusApproved, StatusRejected, StatusCancelled},
	StatusUnderReview: {StatusApproved, StatusRejected},
	StatusApproved:    {StatusImplemented},
}

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusUnderReview,
		StatusApproved, StatusRejected, StatusImplemented, StatusCancelled:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return len(transitions[s]) == 0 && s.Valid()
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Reviewable reports whether a review decision may be applied.
func (s Status) Reviewable() bool {
	return s == StatusSubmitted || s == StatusUnderReview
}
