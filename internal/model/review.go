package model

import "time"

// Review отзыв об офисе. Не больше одного на аренду:
// единственность обеспечивается переходом Lease в статус REVIEWED.
type Review struct {
	ID          int64     `json:"id"`
	LeaseID     int64     `json:"lease_id"`
	CustomerID  int64     `json:"customer_id"`
	OfficeID    int64     `json:"office_id"`
	Rate        int       `json:"rate"` // Оценка от 1 до 5
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
