// Package menu supplies the current restaurant menu to the interpreter
// and renders it for the chat, fetching from the product backend with a
// local-file fallback.
package menu

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"domibot/internal/models"
)

// Provider fetches the menu keyed by restaurant id, falling back to a
// local JSON file of the same shape when the backend is unreachable.
type Provider struct {
	baseURL      string
	restaurantID string
	localPath    string
	client       *http.Client
}

// NewProvider creates a menu provider. baseURL and restaurantID address
// the remote read endpoint; localPath is the fallback file.
func NewProvider(baseURL, restaurantID, localPath string) *Provider {
	return &Provider{
		baseURL:      baseURL,
		restaurantID: restaurantID,
		localPath:    localPath,
		client:       &http.Client{Timeout: 10 * time.Second},
	}
}

// menuEnvelope is the backend response wrapper.
type menuEnvelope struct {
	IsSuccess bool        `json:"isSuccess"`
	Data      models.Menu `json:"data"`
}

// Current returns the freshest menu available: backend first, local
// file second, empty menu last. It never fails the caller; a missing
// menu only degrades interpretation.
func (p *Provider) Current(ctx context.Context) models.Menu {
	m, err := p.fetchRemote(ctx)
	if err == nil {
		return m
	}
	log.Printf("menu: backend fetch failed, using local file: %v", err)

	m, err = p.loadLocal()
	if err != nil {
		log.Printf("menu: local file unavailable: %v", err)
		return models.Menu{}
	}
	return m
}

func (p *Provider) fetchRemote(ctx context.Context) (models.Menu, error) {
	if p.restaurantID == "" {
		return nil, fmt.Errorf("no restaurant id configured")
	}

	url := fmt.Sprintf("%s/productos/menu/%s", p.baseURL, p.restaurantID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("menu endpoint returned %d", resp.StatusCode)
	}

	var envelope menuEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decoding menu response: %w", err)
	}
	if !envelope.IsSuccess || envelope.Data == nil {
		return nil, fmt.Errorf("menu endpoint returned no data")
	}
	return envelope.Data, nil
}

func (p *Provider) loadLocal() (models.Menu, error) {
	raw, err := os.ReadFile(p.localPath)
	if err != nil {
		return nil, err
	}
	var m models.Menu
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", p.localPath, err)
	}
	return m, nil
}
