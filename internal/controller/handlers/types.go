package handlers

import "time"

// LeaseRequest тело запроса на бронирование офиса
type LeaseRequest struct {
	StartDate     string `json:"start_date" validate:"required,datetime=2006-01-02"`
	Months        int    `json:"months" validate:"required,min=1,max=60"`
	OccupantCount int    `json:"occupant_count" validate:"required,min=1"`
	MonthlyPay    bool   `json:"monthly_pay"`
}

// LeaseResponse бронирование в ответе API
type LeaseResponse struct {
	ID         int64     `json:"id"`
	OfficeID   int64     `json:"office_id"`
	Price      int64     `json:"price"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	Status     string    `json:"status"`
	Active     bool      `json:"active"` // Аренда занимает комнату (AWAIT или PROCEEDING)
	CreatedAt  time.Time `json:"created_at"`
}

// ReviewRequest тело запроса на создание или изменение отзыва
type ReviewRequest struct {
	Rate        int    `json:"rate" validate:"required,min=1,max=5"`
	Description string `json:"description" validate:"max=1000"`
}
