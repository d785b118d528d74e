package service

import "errors"

var (
	// ErrForbidden indicates the actor may not act on the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrUserNotFound indicates the referenced account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials indicates a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountSuspended indicates the account was suspended by an admin.
	ErrAccountSuspended = errors.New("account suspended")
	// ErrApplicationNotAllowed indicates the artist application state forbids a new application.
	ErrApplicationNotAllowed = errors.New("artist application not allowed in current state")
	// ErrApplicationsClosed indicates artist applications are disabled in platform settings.
	ErrApplicationsClosed = errors.New("artist applications are currently closed")

	// ErrNotSeller indicates the actor is not a verified artist or gallerist.
	ErrNotSeller = errors.New("only verified artists can publish")
	// ErrArtworkNotFound indicates the artwork does not exist.
	ErrArtworkNotFound = errors.New("artwork not found")
	// ErrArtworkSold indicates a sold artwork can no longer change availability.
	ErrArtworkSold = errors.New("artwork already sold")
	// ErrEventNotFound indicates the event does not exist.
	ErrEventNotFound = errors.New("event not found")
	// ErrCapacityBelowSold indicates an event capacity update below tickets already sold.
	ErrCapacityBelowSold = errors.New("capacity cannot be lower than tickets sold")

	// ErrCartItemNotFound indicates the cart line does not exist.
	ErrCartItemNotFound = errors.New("cart item not found")
	// ErrCartItemUnavailable indicates the product can no longer be bought.
	ErrCartItemUnavailable = errors.New("item is not available")
	// ErrOwnItem indicates a seller tried to buy their own listing.
	ErrOwnItem = errors.New("cannot buy your own item")
	// ErrInsufficientCapacity indicates not enough tickets remain.
	ErrInsufficientCapacity = errors.New("not enough tickets remaining")
	// ErrInvalidQuantity indicates a quantity that the product type does not allow.
	ErrInvalidQuantity = errors.New("invalid quantity for item")
	// ErrCartEmpty indicates checkout of an empty cart.
	ErrCartEmpty = errors.New("cart is empty")
	// ErrOrderNotFound indicates the order does not exist.
	ErrOrderNotFound = errors.New("order not found")
	// ErrPaymentsUnavailable indicates no payment gateway is configured.
	ErrPaymentsUnavailable = errors.New("payments are not configured")
	// ErrMaintenanceMode indicates checkout is paused by platform settings.
	ErrMaintenanceMode = errors.New("marketplace is in maintenance mode")

	// ErrReviewNotFound indicates the review does not exist.
	ErrReviewNotFound = errors.New("review not found")
	// ErrDuplicateReview indicates the user already reviewed the artwork.
	ErrDuplicateReview = errors.New("artwork already reviewed")
	// ErrSelfReview indicates an artist tried to review their own artwork.
	ErrSelfReview = errors.New("cannot review your own artwork")

	// ErrMessageNotFound indicates the message does not exist.
	ErrMessageNotFound = errors.New("message not found")
	// ErrSelfMessage indicates a message addressed to its sender.
	ErrSelfMessage = errors.New("cannot message yourself")
	// ErrEmptyMessage indicates content that sanitised to nothing.
	ErrEmptyMessage = errors.New("message content is empty")

	// ErrSelfSuspend indicates an admin tried to suspend their own account.
	ErrSelfSuspend = errors.New("cannot suspend your own account")
	// ErrSelfDelete indicates an admin tried to delete their own account.
	ErrSelfDelete = errors.New("cannot delete your own account")
	// ErrRoleEscalation indicates a non super admin tried to grant or revoke admin roles.
	ErrRoleEscalation = errors.New("only super admins can change admin roles")
	// ErrInvalidSettings indicates the settings document failed schema validation.
	ErrInvalidSettings = errors.New("invalid platform settings")

	// ErrStorageUnavailable indicates media storage is not configured.
	ErrStorageUnavailable = errors.New("media storage is not configured")
)
