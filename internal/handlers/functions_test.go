package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallFunctionWaitlistConfirmation(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/functions/sendWaitlistConfirmation", `{"data":{"email":"ada@example.com","name":"Ada"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"result":{"success":true}}`, rec.Body.String())
	assert.Equal(t, 2, f.mailer.count())
}

func TestCallFunctionMissingEmail(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/functions/sendWaitlistConfirmation", `{"data":{}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	errObj := body["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_ARGUMENT", errObj["status"])
	assert.Zero(t, f.mailer.count())
}

func TestCallFunctionSendFeedback(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/functions/sendFeedback", `{"data":{"message":""}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/functions/sendFeedback", `{"data":{"message":"hi","rating":4}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, f.mailer.count())
	assert.Equal(t, "feedback@example.com", f.mailer.sent[0].To)
}

func TestCallFunctionMailerFailure(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("smtp down")

	rec := f.do(http.MethodPost, "/functions/sendFeedback", `{"data":{"message":"hi","rating":4}}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	errObj := decodeBody(t, rec)["error"].(map[string]interface{})
	assert.Equal(t, "INTERNAL", errObj["status"])
	assert.NotContains(t, errObj["message"], "smtp down")
}

func TestCallFunctionUnknown(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/functions/doesNotExist", `{"data":{}}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	errObj := decodeBody(t, rec)["error"].(map[string]interface{})
	assert.Equal(t, "NOT_FOUND", errObj["status"])
}
