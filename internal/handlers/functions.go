package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lkhn/wealth-backend/internal/notify"
)

const (
	FunctionSendWaitlistConfirmation = "sendWaitlistConfirmation"
	FunctionSendFeedback             = "sendFeedback"
)

type callRequest struct {
	Data json.RawMessage `json:"data"`
}

type callResult struct {
	Success bool `json:"success"`
}

type callResponse struct {
	Result callResult `json:"result"`
}

type callError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type callErrorResponse struct {
	Error callError `json:"error"`
}

// CallFunction handles POST /functions/{name} using the callable envelope:
// {"data": {...}} in, {"result": {...}} or {"error": {"status", "message"}} out.
func (h *Handler) CallFunction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req callRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFunctionError(w, &notify.FunctionError{Code: notify.CodeInvalidArgument, Message: "Request body must be a JSON object with a data field"})
		return
	}

	var err error
	switch name {
	case FunctionSendWaitlistConfirmation:
		var in notify.WaitlistConfirmation
		if err = decodeData(req.Data, &in); err == nil {
			err = h.Notifier.SendWaitlistConfirmation(r.Context(), in)
		}
	case FunctionSendFeedback:
		var in notify.FeedbackMessage
		if err = decodeData(req.Data, &in); err == nil {
			err = h.Notifier.SendFeedback(r.Context(), in)
		}
	default:
		err = &notify.FunctionError{Code: notify.CodeNotFound, Message: "Function " + name + " does not exist"}
	}

	if err != nil {
		writeFunctionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, callResponse{Result: callResult{Success: true}})
}

func decodeData(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &notify.FunctionError{Code: notify.CodeInvalidArgument, Message: "Invalid data payload", Err: err}
	}
	return nil
}

func writeFunctionError(w http.ResponseWriter, err error) {
	fe := notify.AsFunctionError(err)
	if fe.Code == notify.CodeInternal {
		zap.S().Errorw("function call failed", "error", err)
	}
	writeJSON(w, fe.Code.HTTPStatus(), callErrorResponse{Error: callError{
		Status:  fe.Code.Status(),
		Message: fe.Message,
	}})
}
