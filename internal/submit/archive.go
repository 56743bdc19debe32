package submit

import (
	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"domibot/internal/models"
)

// InitDB opens the local order archive and migrates its schema.
func InitDB(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.ArchivedOrder{}, &models.ArchivedItem{}).Error; err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// archiveRow builds the archive record from a confirmed session.
func archiveRow(s *models.Session) *models.ArchivedOrder {
	row := &models.ArchivedOrder{
		CustomerName:  s.CustomerName,
		Phone:         s.Phone,
		Address:       s.Address,
		PaymentMethod: paymentName(s),
		CashTendered:  s.CashTendered,
		Status:        models.OrderStatusPendingPayment,
	}
	if s.Note != nil {
		row.Note = *s.Note
	}

	if order := s.Order; order != nil {
		row.MenuTotal = order.ConfirmedTotal()
		row.EstimatedTotal = order.EstimatedTotal
		row.HasUnmatchedItems = order.HasUnmatchedItems
		row.AIProcessed = order.AIProcessed
		row.NeedsManualReview = order.NeedsManualReview || order.HasUnmatchedItems
		row.Summary = order.LineSummary()

		for _, item := range order.Items {
			archived := models.ArchivedItem{
				Dish:      item.Dish,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				LineTotal: item.LineTotal,
				InMenu:    item.InMenu,
			}
			if item.Size != nil {
				archived.Size = *item.Size
			}
			if item.ExtraDetails != nil {
				archived.ExtraDetails = *item.ExtraDetails
			}
			if item.ReviewNote != nil {
				archived.ReviewNote = *item.ReviewNote
			}
			row.Items = append(row.Items, archived)
		}
	} else {
		row.NeedsManualReview = true
		row.Summary = "Pedido manual"
	}
	return row
}
