package model

import "time"

type LeaseStatus string

const (
	LeaseStatusAwait      LeaseStatus = "AWAIT"      // Ожидает подтверждения владельца
	LeaseStatusProceeding LeaseStatus = "PROCEEDING" // Аренда идёт
	LeaseStatusExpired    LeaseStatus = "EXPIRED"    // Срок аренды истёк
	LeaseStatusReviewed   LeaseStatus = "REVIEWED"   // Отзыв оставлен
	LeaseStatusRejected   LeaseStatus = "REJECTED"   // Отклонено владельцем
)

type Lease struct {
	ID         int64       `json:"id"`
	OfficeID   int64       `json:"office_id"`
	CustomerID int64       `json:"customer_id"`
	Price      int64       `json:"price"`
	StartDate  time.Time   `json:"start_date"`
	EndDate    time.Time   `json:"end_date"` // Исключительная граница: последний оплаченный день - EndDate-1
	MonthlyPay bool        `json:"monthly_pay"`
	Status     LeaseStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`

	// Дополнительные поля для удобства (не из БД)
	Office   *Office   `json:"office,omitempty"`
	Customer *Customer `json:"customer,omitempty"`
}

// IsActive активная аренда занимает комнату офиса
func (l *Lease) IsActive() bool {
	return l.Status == LeaseStatusAwait || l.Status == LeaseStatusProceeding
}

// LeaseEnd считает дату окончания аренды (исключительно)
func LeaseEnd(start time.Time, months int) time.Time {
	return start.AddDate(0, months, 0)
}

// LeasePrice считает полную стоимость аренды за весь срок
func LeasePrice(leaseFee int64, months int) int64 {
	return leaseFee * int64(months)
}
