package errors

import stderrors "errors"

// Rejections surfaced by the ledger. Every public operation fails with one of
// these (possibly wrapped) and leaves state untouched.
var (
	ErrNotOwner           = stderrors.New("caller is not the registry owner")
	ErrNotAuthorized      = stderrors.New("caller is not an authorized creator")
	ErrNotFound           = stderrors.New("not found")
	ErrAlreadyMinted      = stderrors.New("request already minted")
	ErrInvalidAmount      = stderrors.New("invalid amount")
	ErrDisbursementFailed = stderrors.New("disbursement failed")
)

// Supplemental rejections raised by the bank and the asset surface.
var (
	ErrInsufficientFunds = stderrors.New("insufficient funds")
	ErrAccountFrozen     = stderrors.New("account frozen")
	ErrInvalidRecipient  = stderrors.New("invalid recipient")
	ErrNotAssetOwner     = stderrors.New("caller does not own the asset")
	ErrInvalidMetadata   = stderrors.New("metadata reference required")
)
