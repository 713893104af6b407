// Package wire defines the JSON line protocol spoken between the market
// server and its clients (admin console, frontend). Every message is a single
// newline-terminated JSON object with a type tag and a command-specific
// payload.
package wire

import "encoding/json"

// Request types.
const (
	CmdGetStock = "GET_STOCK"
	CmdGetCart  = "GET_CART"
	CmdReserve  = "RESERVE"
	CmdCancel   = "CANCEL"
	CmdSetStock = "SET_STOCK"
	CmdQuit     = "QUIT"
)

// Response types.
const (
	RespStock   = "STOCK"
	RespCart    = "CART"
	RespReserve = "RESERVE_RESULT"
	RespCancel  = "CANCEL_RESULT"
	RespAdmin   = "ADMIN_RESULT"
	RespError   = "ERROR"
	RespBye     = "BYE"
)

// Result statuses.
const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Error codes carried in Result.Code.
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeProductNotFound   = "PRODUCT_NOT_FOUND"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeOverCancel        = "OVER_CANCEL"
	CodeUnknownSession    = "UNKNOWN_SESSION"
	CodeInternal          = "INTERNAL"
)

// Request is the client→server envelope. Payload shape depends on Type.
type Request struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is the server→client envelope.
type Response struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ItemRequest is the payload for RESERVE, CANCEL and SET_STOCK.
type ItemRequest struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// Result is the payload for RESERVE_RESULT, CANCEL_RESULT, ADMIN_RESULT and
// ERROR responses. Quantity carries the effected amount on success;
// Available the product's availability after the operation where relevant.
type Result struct {
	Status    string `json:"status"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message"`
	Product   string `json:"product,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
	Available int    `json:"available,omitempty"`
}

// StockPayload is the payload for STOCK and CART responses.
type StockPayload struct {
	Items map[string]int `json:"items"`
}

// NewRequest builds a Request with the payload marshalled in place.
func NewRequest(typ string, payload any) (Request, error) {
	if payload == nil {
		return Request{Type: typ}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Request{}, err
	}
	return Request{Type: typ, Payload: raw}, nil
}

// NewResponse builds a Response with the payload marshalled in place.
func NewResponse(typ string, payload any) (Response, error) {
	if payload == nil {
		return Response{Type: typ}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Response{}, err
	}
	return Response{Type: typ, Payload: raw}, nil
}
