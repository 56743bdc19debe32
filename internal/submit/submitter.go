// Package submit serializes a confirmed conversation into the backend
// and spreadsheet payloads and dispatches both without blocking the
// conversation. Failures are logged, never surfaced, never retried.
package submit

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jinzhu/gorm"

	"domibot/internal/models"
	"domibot/internal/money"
)

// Service dispatches confirmed orders to the order backend, the
// spreadsheet log and the local archive. Each sink is independent and
// best-effort.
type Service struct {
	backendURL string
	sheetsURL  string
	client     *http.Client
	db         *gorm.DB
	wg         sync.WaitGroup
}

// NewService creates a submitter. db may be nil to disable the local
// archive; empty sheetsURL disables the spreadsheet sink.
func NewService(backendURL, sheetsURL string, db *gorm.DB) *Service {
	return &Service{
		backendURL: backendURL,
		sheetsURL:  sheetsURL,
		client:     &http.Client{Timeout: 15 * time.Second},
		db:         db,
	}
}

// backendPayload is the structured order-backend body.
type backendPayload struct {
	Nombre            string             `json:"nombre"`
	Telefono          string             `json:"telefono"`
	Direccion         string             `json:"direccion"`
	MetodoPago        string             `json:"metodo_pago"`
	Billete           *float64           `json:"billete"`
	TotalMenu         float64            `json:"total_menu"`
	TotalEstimado     *float64           `json:"total_estimado"`
	TieneItemsSinMenu bool               `json:"tiene_items_sin_menu"`
	Resumen           string             `json:"resumen"`
	Nota              *string            `json:"nota"`
	ProcesadoConAI    bool               `json:"procesado_con_ai"`
	Estado            string             `json:"estado"`
	Items             []models.OrderItem `json:"items"`
}

// sheetsPayload is the flat, human-oriented spreadsheet row.
type sheetsPayload struct {
	Nombre    string  `json:"nombre"`
	Telefono  string  `json:"telefono"`
	Pedido    string  `json:"pedido"`
	Desglose  string  `json:"desglose"`
	Total     float64 `json:"total"`
	Pago      string  `json:"pago"`
	Billete   *string `json:"billete"`
	Direccion string  `json:"direccion"`
	Nota      *string `json:"nota"`
	Fecha     string  `json:"fecha"`
	Hora      string  `json:"hora"`
	Estado    string  `json:"estado"`
}

// Submit builds every payload synchronously (the session is reset by
// the caller right after this returns) and dispatches each sink in its
// own goroutine. The user-visible confirmation never waits on any of
// them.
func (s *Service) Submit(sess *models.Session) {
	backend := buildBackendPayload(sess)
	sheet := buildSheetsPayload(sess)
	row := archiveRow(sess)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.post(s.backendURL+"/pedidos/whatsapp", backend, "backend")
	}()

	if s.sheetsURL != "" {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.post(s.sheetsURL, sheet, "sheets")
		}()
	}

	if s.db != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.db.Create(row).Error; err != nil {
				log.Printf("submit: archive write failed: %v", err)
				return
			}
			log.Printf("submit: order archived locally as #%d", row.ID)
		}()
	}
}

// Wait blocks until all in-flight dispatches finish. Used at shutdown
// and by tests; the conversation flow never calls it.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) post(url string, payload interface{}, sink string) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("submit: %s payload marshal failed: %v", sink, err)
		return
	}

	resp, err := s.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("submit: %s dispatch failed: %v", sink, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("submit: %s returned %d", sink, resp.StatusCode)
		return
	}

	if sink == "backend" {
		var reply struct {
			Data struct {
				ID interface{} `json:"id"`
			} `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&reply); err == nil && reply.Data.ID != nil {
			log.Printf("submit: order stored by backend as %v", reply.Data.ID)
			return
		}
	}
	log.Printf("submit: %s accepted order", sink)
}

func buildBackendPayload(sess *models.Session) backendPayload {
	payload := backendPayload{
		Nombre:     sess.CustomerName,
		Telefono:   sess.Phone,
		Direccion:  sess.Address,
		MetodoPago: paymentName(sess),
		Billete:    sess.CashTendered,
		Nota:       sess.Note,
		Estado:     models.OrderStatusPendingPayment,
		Items:      []models.OrderItem{},
	}

	if order := sess.Order; order != nil {
		payload.TotalMenu = order.ConfirmedTotal()
		if order.EstimatedTotal > 0 {
			estimated := order.EstimatedTotal
			payload.TotalEstimado = &estimated
		}
		payload.TieneItemsSinMenu = order.HasUnmatchedItems
		payload.Resumen = order.LineSummary()
		payload.ProcesadoConAI = order.AIProcessed
		if len(order.Items) > 0 {
			payload.Items = order.Items
		}
	}
	return payload
}

func buildSheetsPayload(sess *models.Session) sheetsPayload {
	now := time.Now()
	payload := sheetsPayload{
		Nombre:    sess.CustomerName,
		Telefono:  sess.Phone,
		Pago:      paymentName(sess),
		Direccion: sess.Address,
		Nota:      sess.Note,
		Fecha:     now.Format("2/1/2006"),
		Hora:      now.Format("15:04:05"),
		Estado:    models.OrderStatusPendingPayment,
	}

	if sess.CashTendered != nil {
		formatted := money.FormatCOP(*sess.CashTendered)
		payload.Billete = &formatted
	}

	order := sess.Order
	payload.Pedido = order.LineSummary()
	payload.Total = order.ConfirmedTotal()
	payload.Desglose = buildBreakdown(order)
	return payload
}

// buildBreakdown renders one priced line per item, or a to-confirm line
// when there are no structured items.
func buildBreakdown(order *models.Order) string {
	if order == nil || len(order.Items) == 0 {
		return order.LineSummary() + " - Precio a confirmar"
	}
	lines := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		if item.InMenu {
			lines = append(lines, item.Label()+" - "+money.FormatCOP(item.LineTotal))
		} else {
			lines = append(lines, item.Label()+" - Precio a confirmar")
		}
	}
	return strings.Join(lines, "\n")
}

func paymentName(sess *models.Session) string {
	if sess.Payment == nil {
		return ""
	}
	return sess.Payment.Name
}
