package events

type Status string

const (
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusApproved        Status = "APPROVED"
	StatusRejected        Status = "REJECTED"
	StatusCancelled       Status = "CANCELLED"
	StatusFinished        Status = "FINISHED"
)
