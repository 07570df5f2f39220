// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"curiousblogs/internal/models"
)

// ErrEmailRequired is returned when a subscribe or contact submission is
// missing the email address.
var ErrEmailRequired = errors.New("email is required")

// SubscriberStore handles newsletter signups. Records are write-once with
// no further lifecycle.
type SubscriberStore struct {
	db *sql.DB
}

// NewSubscriberStore returns a new SubscriberStore.
func NewSubscriberStore(db *sql.DB) *SubscriberStore {
	return &SubscriberStore{db: db}
}

// Add records a new subscriber. Email is required.
func (s *SubscriberStore) Add(name, email, phone string) (*models.Subscriber, error) {
	if strings.TrimSpace(email) == "" {
		return nil, ErrEmailRequired
	}

	var sub models.Subscriber
	err := s.db.QueryRow(`
		INSERT INTO subscribers (name, email, phone)
		VALUES ($1, $2, $3)
		RETURNING id, name, email, phone, created_at
	`, name, email, phone).Scan(&sub.ID, &sub.Name, &sub.Email, &sub.Phone, &sub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("add subscriber: %w", err)
	}
	return &sub, nil
}

// ContactStore handles contact form submissions. Records are write-once
// with no further lifecycle.
type ContactStore struct {
	db *sql.DB
}

// NewContactStore returns a new ContactStore.
func NewContactStore(db *sql.DB) *ContactStore {
	return &ContactStore{db: db}
}

// Add records a new contact message. Email is required.
func (s *ContactStore) Add(name, email, phone, message string) (*models.ContactMessage, error) {
	if strings.TrimSpace(email) == "" {
		return nil, ErrEmailRequired
	}

	var m models.ContactMessage
	err := s.db.QueryRow(`
		INSERT INTO contacts (name, email, phone, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, phone, message, created_at
	`, name, email, phone, message).Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Message, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("add contact message: %w", err)
	}
	return &m, nil
}
