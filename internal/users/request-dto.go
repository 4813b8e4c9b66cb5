package users

type DepositRequest struct {
	Amount string `json:"amount" validate:"required,numeric"`
}
