package dataservice

// JoinRequestResult is the outcome of RequestJoinIdea.
type JoinRequestResult string

const (
	JoinRequested          JoinRequestResult = "requested"
	JoinAlreadyRequested   JoinRequestResult = "already-requested"
	JoinAlreadyParticipant JoinRequestResult = "already-participant"
	JoinNotFound           JoinRequestResult = "not-found"
)

// ResponseResult is the outcome of RespondToRequirement.
type ResponseResult string

const (
	ResponseSubmitted        ResponseResult = "submitted"
	ResponseAlreadyResponded ResponseResult = "already-responded"
	ResponseClosed           ResponseResult = "closed"
	ResponseNotFound         ResponseResult = "not-found"
)

// ResolveResult is the outcome of ResolveRequirementResponse.
type ResolveResult string

const (
	ResolveApproved        ResolveResult = "approved"
	ResolveRejected        ResolveResult = "rejected"
	ResolveAlreadyResolved ResolveResult = "already-resolved"
	ResolveNotFound        ResolveResult = "not-found"
)
