package alert

import (
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

// Payload is a decoded webhook body.
type Payload struct {
	Fields map[string]any
	Secret string
}

// payloadSchema only constrains value types; presence and enum checks belong
// to Normalize so its rule order decides which error the caller sees.
const payloadSchema = `{
  "type": "object",
  "properties": {
    "action":      {"type": ["string", "null"]},
    "symbol":      {"type": ["string", "null"]},
    "quantity":    {"type": ["number", "string", "null"]},
    "orderType":   {"type": ["string", "null"]},
    "order_type":  {"type": ["string", "null"]},
    "limitPrice":  {"type": ["number", "string", "null"]},
    "limit_price": {"type": ["number", "string", "null"]},
    "stopPrice":   {"type": ["number", "string", "null"]},
    "stop_price":  {"type": ["number", "string", "null"]},
    "exchange":    {"type": ["string", "null"]},
    "secret":      {"type": ["string", "null"]}
  }
}`

var compiledPayloadSchema = jsonschema.MustCompileString("tvbridge://alert.json", payloadSchema)

// ParsePayload decodes a raw webhook body. The body must be a JSON object whose
// known fields carry the expected JSON types; anything else is ErrInvalidPayload.
func ParsePayload(body []byte) (Payload, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return Payload{}, fail(ErrInvalidPayload, "", "request body is empty")
	}
	if !gjson.ValidBytes(body) {
		return Payload{}, fail(ErrInvalidPayload, "", "request body is not valid JSON")
	}
	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return Payload{}, fail(ErrInvalidPayload, "", "request body must be a JSON object")
	}
	fields, ok := parsed.Value().(map[string]any)
	if !ok {
		return Payload{}, fail(ErrInvalidPayload, "", "request body must be a JSON object")
	}
	if err := compiledPayloadSchema.Validate(fields); err != nil {
		return Payload{}, fail(ErrInvalidPayload, schemaField(err), "invalid alert payload: %s", schemaMessage(err))
	}
	return Payload{
		Fields: fields,
		Secret: parsed.Get("secret").String(),
	}, nil
}

func schemaField(err error) string {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return ""
	}
	leaf := verr
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	return strings.TrimPrefix(leaf.InstanceLocation, "/")
}

func schemaMessage(err error) string {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return err.Error()
	}
	leaf := verr
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	if field := strings.TrimPrefix(leaf.InstanceLocation, "/"); field != "" {
		return fmt.Sprintf("%s: %s", field, leaf.Message)
	}
	return leaf.Message
}
