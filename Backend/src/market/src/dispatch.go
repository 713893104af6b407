package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ahinestrog/mercadinho/wire"
)

// dispatch decodes one request, runs it against the market on behalf of the
// given session and encodes the verdict. Engine errors come back as typed
// values and are mapped to wire codes here; none of them end the session.
func dispatch(m *Market, id SessionID, req wire.Request) wire.Response {
	switch req.Type {
	case wire.CmdGetStock:
		return snapshotResponse(wire.RespStock, m.Stock(), nil)

	case wire.CmdGetCart:
		items, err := m.Cart(id)
		return snapshotResponse(wire.RespCart, items, err)

	case wire.CmdReserve:
		item, err := decodeItem(req)
		if err == nil {
			err = m.Reserve(id, item.Product, item.Quantity)
		}
		if err != nil {
			return resultResponse(wire.RespReserve, errorResult(err))
		}
		return resultResponse(wire.RespReserve, wire.Result{
			Status:   wire.StatusOK,
			Message:  fmt.Sprintf("reserved %d %q", item.Quantity, normalize(item.Product)),
			Product:  normalize(item.Product),
			Quantity: item.Quantity,
		})

	case wire.CmdCancel:
		item, err := decodeItem(req)
		var available int
		if err == nil {
			available, err = m.Cancel(id, item.Product, item.Quantity)
		}
		if err != nil {
			return resultResponse(wire.RespCancel, errorResult(err))
		}
		return resultResponse(wire.RespCancel, wire.Result{
			Status:    wire.StatusOK,
			Message:   fmt.Sprintf("cancelled %d %q, %d available again", item.Quantity, normalize(item.Product), available),
			Product:   normalize(item.Product),
			Quantity:  item.Quantity,
			Available: available,
		})

	case wire.CmdSetStock:
		item, err := decodeItem(req)
		if err == nil {
			err = m.SetStock(item.Product, item.Quantity)
		}
		if err != nil {
			return resultResponse(wire.RespAdmin, errorResult(err))
		}
		return resultResponse(wire.RespAdmin, wire.Result{
			Status:    wire.StatusOK,
			Message:   fmt.Sprintf("stock of %q set to %d", normalize(item.Product), item.Quantity),
			Product:   normalize(item.Product),
			Available: item.Quantity,
		})

	case wire.CmdQuit:
		resp, _ := wire.NewResponse(wire.RespBye, nil)
		return resp

	default:
		return resultResponse(wire.RespError, wire.Result{
			Status:  wire.StatusError,
			Code:    wire.CodeInvalidRequest,
			Message: fmt.Sprintf("unknown command %q", req.Type),
		})
	}
}

func decodeItem(req wire.Request) (wire.ItemRequest, error) {
	var item wire.ItemRequest
	if err := json.Unmarshal(req.Payload, &item); err != nil {
		return item, InvalidRequestError{Reason: "malformed payload"}
	}
	return item, nil
}

// errorResult maps a typed engine error to its wire code, keeping the
// quantity details the error carries.
func errorResult(err error) wire.Result {
	res := wire.Result{Status: wire.StatusError, Message: err.Error(), Code: wire.CodeInternal}

	var invalid InvalidRequestError
	var notFound ProductNotFoundError
	var short InsufficientStockError
	var over OverCancelError
	var unknown UnknownSessionError

	switch {
	case errors.As(err, &invalid):
		res.Code = wire.CodeInvalidRequest
	case errors.As(err, &notFound):
		res.Code = wire.CodeProductNotFound
		res.Product = notFound.Product
	case errors.As(err, &short):
		res.Code = wire.CodeInsufficientStock
		res.Product = short.Product
		res.Quantity = short.Requested
		res.Available = short.Available
	case errors.As(err, &over):
		res.Code = wire.CodeOverCancel
		res.Product = over.Product
		res.Quantity = over.Requested
		res.Available = over.Held
	case errors.As(err, &unknown):
		res.Code = wire.CodeUnknownSession
	}
	return res
}

func snapshotResponse(typ string, items map[string]int, err error) wire.Response {
	if err != nil {
		return resultResponse(wire.RespError, errorResult(err))
	}
	resp, merr := wire.NewResponse(typ, wire.StockPayload{Items: items})
	if merr != nil {
		return resultResponse(wire.RespError, wire.Result{
			Status: wire.StatusError, Code: wire.CodeInternal, Message: "encoding failed",
		})
	}
	return resp
}

func resultResponse(typ string, res wire.Result) wire.Response {
	resp, err := wire.NewResponse(typ, res)
	if err != nil {
		// Result marshalling cannot fail, but keep the session alive anyway.
		resp = wire.Response{Type: wire.RespError}
	}
	return resp
}
