// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"curiousblogs/internal/render"
	"curiousblogs/internal/store"
)

// Forms handles the write-once public submissions: contact messages
// and newsletter signups.
type Forms struct {
	renderer        *render.Renderer
	contactStore    *store.ContactStore
	subscriberStore *store.SubscriberStore
}

// NewForms creates a new Forms handler group.
func NewForms(renderer *render.Renderer, contactStore *store.ContactStore, subscriberStore *store.SubscriberStore) *Forms {
	return &Forms{
		renderer:        renderer,
		contactStore:    contactStore,
		subscriberStore: subscriberStore,
	}
}

// ContactSubmit stores a contact form submission. Invalid input
// re-renders the form with what the visitor typed.
func (f *Forms) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	email := r.FormValue("email")
	phone := r.FormValue("phone")
	message := r.FormValue("message")

	_, err := f.contactStore.Add(name, email, phone, message)
	if err != nil {
		msg := "An unexpected error occurred. Please try again."
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrEmailRequired) {
			msg = "Please provide an email address."
			status = http.StatusUnprocessableEntity
		} else {
			slog.Error("store contact message failed", "error", err)
		}
		f.renderer.PageStatus(w, r, status, "contact", &render.PageData{
			Title:   "Contact",
			Section: "contact",
			Data: map[string]any{
				"Name": name, "Email": email, "Phone": phone, "Message": message,
				"Error": msg,
			},
		})
		return
	}

	f.renderer.Page(w, r, "contact", &render.PageData{
		Title:   "Contact",
		Section: "contact",
		Flashes: []render.Flash{{Type: "success", Message: "Thanks for reaching out. We will get back to you soon."}},
	})
}

// SubscribeSubmit stores a newsletter signup.
func (f *Forms) SubscribeSubmit(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	email := r.FormValue("email")

	_, err := f.subscriberStore.Add(name, email, r.FormValue("phone"))
	if err != nil {
		msg := "An unexpected error occurred. Please try again."
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrEmailRequired) {
			msg = "Please provide an email address."
			status = http.StatusUnprocessableEntity
		} else {
			slog.Error("store subscriber failed", "error", err)
		}
		f.renderer.PageStatus(w, r, status, "contact", &render.PageData{
			Title:   "Contact",
			Section: "contact",
			Data:    map[string]any{"Name": name, "Email": email, "Error": msg},
		})
		return
	}

	f.renderer.Page(w, r, "contact", &render.PageData{
		Title:   "Contact",
		Section: "contact",
		Flashes: []render.Flash{{Type: "success", Message: "You are subscribed. Welcome aboard!"}},
	})
}
