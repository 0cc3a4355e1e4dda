package client

import (
	"encoding/json"
	"log"
	"time"
)

// CookieConsent records the visitor's cookie preferences. It shares the
// storage mechanism with the funnel cache but is an independent preference
// store, not part of the funnel pipeline.
type CookieConsent struct {
	Necessary  bool      `json:"necessary"`
	Analytics  bool      `json:"analytics"`
	Marketing  bool      `json:"marketing"`
	Functional bool      `json:"functional"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ConsentStore reads and writes cookie-consent preferences.
type ConsentStore struct {
	storage Storage
}

func NewConsentStore(storage Storage) *ConsentStore {
	return &ConsentStore{storage: storage}
}

// Get returns the stored preferences, or nil when none (or an unreadable
// snapshot) exist.
func (c *ConsentStore) Get() *CookieConsent {
	raw, ok := c.storage.Get(CookieConsentKey)
	if !ok {
		return nil
	}

	var consent CookieConsent
	if err := json.Unmarshal([]byte(raw), &consent); err != nil {
		log.Printf("WARN: discarding unreadable consent snapshot: %v", err)
		return nil
	}
	return &consent
}

// Set persists the preferences. Necessary cookies are always on.
func (c *ConsentStore) Set(consent CookieConsent) error {
	consent.Necessary = true
	consent.UpdatedAt = time.Now().UTC()

	raw, err := json.Marshal(consent)
	if err != nil {
		return err
	}
	return c.storage.Set(CookieConsentKey, string(raw))
}

// Clear removes the stored preferences.
func (c *ConsentStore) Clear() error {
	return c.storage.Delete(CookieConsentKey)
}
