// Package apperr содержит бизнес-ошибки со стабильными кодами.
// Системные ошибки (БД, сеть) оборачиваются через fmt.Errorf и сюда не входят.
package apperr

import "errors"

var (
	ErrOfficeNotFound   = errors.New("office not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrLeaseNotFound    = errors.New("lease not found")
	ErrReviewNotFound   = errors.New("review not found")

	// Бронирование
	ErrOfficeOverCapacity = errors.New("occupant count exceeds office capacity")
	ErrInsufficientPoints = errors.New("not enough points to lease office")
	ErrNoRoomsAvailable   = errors.New("no rooms available for lease")
	ErrLeaseNotAwait      = errors.New("lease is not awaiting confirmation")
	ErrOfficeNotOwned     = errors.New("office is not owned by this owner")

	// Отзывы
	ErrLeaseOwnerMismatch  = errors.New("lease belongs to another customer")
	ErrReviewOwnerMismatch = errors.New("review belongs to another customer")
	ErrReviewAlreadyExists = errors.New("review already exists for this lease")
	ErrLeaseNotExpired     = errors.New("lease is not expired yet")
)

// IsBusiness сообщает является ли ошибка ожидаемым нарушением бизнес-правила,
// а не сбоем системы. Такие ошибки не ретраятся.
func IsBusiness(err error) bool {
	for _, e := range []error{
		ErrOfficeNotFound, ErrCustomerNotFound,
		ErrLeaseNotFound, ErrReviewNotFound,
		ErrOfficeOverCapacity, ErrInsufficientPoints, ErrNoRoomsAvailable,
		ErrLeaseNotAwait, ErrOfficeNotOwned,
		ErrLeaseOwnerMismatch, ErrReviewOwnerMismatch,
		ErrReviewAlreadyExists, ErrLeaseNotExpired,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
