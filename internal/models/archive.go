package models

import "github.com/jinzhu/gorm"

// Order lifecycle states recorded in the archive.
const (
	OrderStatusPendingPayment = "Por confirmar Pago"
)

// ArchivedOrder is the local submission log row written when a customer
// confirms. It mirrors the backend payload so the operator can review
// orders even when the remote endpoints were unreachable.
type ArchivedOrder struct {
	gorm.Model
	CustomerName      string
	Phone             string
	Address           string
	PaymentMethod     string
	CashTendered      *float64
	MenuTotal         float64
	EstimatedTotal    float64
	HasUnmatchedItems bool
	Summary           string
	Note              string
	AIProcessed       bool
	NeedsManualReview bool
	Status            string
	Items             []ArchivedItem `gorm:"foreignkey:ArchivedOrderID"`
}

// ArchivedItem is one line of an archived order.
type ArchivedItem struct {
	gorm.Model
	ArchivedOrderID uint
	Dish            string
	Size            string
	Quantity        int
	UnitPrice       float64
	LineTotal       float64
	ExtraDetails    string
	InMenu          bool
	ReviewNote      string
}
