package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/vivilio/vivilio-server/internal/http/response"
)

// EnvelopeVersion is sent as "v" on every response. Bump it on breaking
// changes to the envelope shape.
const EnvelopeVersion = response.Version

// EnvelopeTransformer wraps huma response bodies in the shared envelope.
// Errors become {v, success:false, error, code, message, details}; anything
// else becomes {v, success:true, data}.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if v == nil {
		return v, nil
	}

	switch body := v.(type) {
	case response.Envelope:
		return body, nil
	case *APIError:
		return response.Failure(body.Code, body.Message, body.Details), nil
	case *huma.ErrorModel:
		code, _ := strconv.Atoi(status)
		return response.Failure(statusToCode(code), body.Detail, nil), nil
	case error:
		code, _ := strconv.Atoi(status)
		return response.Failure(statusToCode(code), body.Error(), nil), nil
	}

	if code, err := strconv.Atoi(status); err == nil && code >= 400 {
		return response.Failure(statusToCode(code), "", v), nil
	}
	return response.Success(v), nil
}
