package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitWaitlist(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/waitlist", `{"name":"Ada","email":"ada@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.waitlist.saved, 1)
	assert.Equal(t, "Ada", f.waitlist.saved[0].Name)
	assert.Equal(t, 2, f.mailer.count(), "user confirmation and admin alert")
	assert.Equal(t, "ada@example.com", f.mailer.sent[0].To)
	assert.Equal(t, "admin@example.com", f.mailer.sent[1].To)
}

func TestSubmitWaitlistValidation(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/waitlist", `{"name":"","email":"bad"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Name is required", decodeBody(t, rec)["error"])

	rec = f.do(http.MethodPost, "/api/waitlist", `{"name":"Ada","email":"ada-at-example"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please enter a valid email address", decodeBody(t, rec)["error"])

	assert.Empty(t, f.waitlist.saved)
	assert.Zero(t, f.mailer.count())
}

func TestSubmitWaitlistMailFailureStillSucceeds(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("smtp down")

	rec := f.do(http.MethodPost, "/api/waitlist", `{"name":"Ada","email":"ada@example.com"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, f.waitlist.saved, 1)
}
