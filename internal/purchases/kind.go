package purchases

type Kind string

const (
	KindPrimary       Kind = "PRIMARY"
	KindResale        Kind = "RESALE"
	KindCounteroffer  Kind = "COUNTEROFFER"
	KindPreallocation Kind = "PREALLOCATION"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindPrimary, KindResale, KindCounteroffer, KindPreallocation:
		return true
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

// IsSecondary reports whether money went from buyer to a seller rather than the platform
func (k Kind) IsSecondary() bool {
	return k == KindResale || k == KindCounteroffer
}

type Status string

const (
	StatusApproved Status = "APPROVED"
	StatusRefunded Status = "REFUNDED"
)

type RefundReason string

const (
	RefundEventCancelled RefundReason = "EVENT_CANCELLED"
	RefundHardship       RefundReason = "HARDSHIP"
)
