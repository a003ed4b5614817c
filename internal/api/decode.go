package api

import (
	"bytes"
	"encoding/json"

	pkgerrors "github.com/sorodev/marketplace-client/pkg/errors"
)

// The backend answers in more than one shape depending on the route and
// version: a {success, data} envelope, the bare resource, or (for order
// creation) the identifier alone. All tolerant decoding lives here so
// no call site does its own shape sniffing.

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// OrderIDFromCreateResponse extracts the created order identifier from
// any of the accepted response shapes: {success, data:{id}} (or data as
// the id itself), a bare {id} object, or the bare identifier.
func OrderIDFromCreateResponse(body []byte) (int64, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return 0, malformed("empty order creation response")
	}

	if trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return 0, malformed("undecodable order creation response")
		}
		if env.Success != nil && !*env.Success {
			return 0, pkgerrors.New(pkgerrors.CodeOrderRejected, env.Message)
		}
		if len(env.Data) > 0 {
			if id, ok := idFromRaw(env.Data); ok {
				return id, nil
			}
		}
		if id, ok := idFromRaw(trimmed); ok {
			return id, nil
		}
		return 0, malformed("no order id in response")
	}

	if id, ok := idFromRaw(trimmed); ok {
		return id, nil
	}
	return 0, malformed("no order id in response")
}

func idFromRaw(raw json.RawMessage) (int64, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0, false
	}
	if trimmed[0] == '{' {
		var obj struct {
			ID *int64 `json:"id"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil || obj.ID == nil {
			return 0, false
		}
		return *obj.ID, true
	}
	var id int64
	if err := json.Unmarshal(trimmed, &id); err != nil {
		return 0, false
	}
	if id == 0 {
		return 0, false
	}
	return id, true
}

// listFromResponse decodes either a bare JSON array or a {success,
// data: [...]} envelope. An empty or null data is a valid empty list,
// distinct from a decode failure.
func listFromResponse[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var list []T
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, malformed("undecodable list response")
		}
		return list, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, malformed("undecodable list response")
	}
	if env.Success != nil && !*env.Success {
		return nil, nil
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	var list []T
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, malformed("undecodable list payload")
	}
	return list, nil
}

// objectFromResponse decodes either the bare resource or a {success,
// data: {...}} envelope around it.
func objectFromResponse[T any](body []byte) (*T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, malformed("empty response")
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, malformed("undecodable response")
	}
	if env.Success != nil && !*env.Success {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, env.Message)
	}

	payload := trimmed
	if data := bytes.TrimSpace(env.Data); len(data) > 0 && !bytes.Equal(data, []byte("null")) {
		payload = data
	}

	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, malformed("undecodable payload")
	}
	return &out, nil
}

func malformed(msg string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeMalformedResponse, msg)
}
