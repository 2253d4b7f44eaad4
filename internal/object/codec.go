package object

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/frahmantamala/star-supla/internal"
	"go.mongodb.org/mongo-driver/bson"
)

var newlineEscaper = strings.NewReplacer("\n", `\n`, "\r", `\r`)

type detailEnvelope struct {
	Detail string `json:"Detail"`
}

// encodeDetail wraps data the way the object endpoint expects writes:
// {"Detail": "<json of data>"} with raw line breaks escaped first.
func encodeDetail(data interface{}) ([]byte, error) {
	inner, err := json.Marshal(data)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode object", err)
	}

	body, err := json.Marshal(detailEnvelope{Detail: newlineEscaper.Replace(string(inner))})
	if err != nil {
		return nil, internal.NewInternalError("failed to encode object", err)
	}
	return body, nil
}

// renderDocument turns an ordered filter or sort document into the JSON
// text carried in the query string.
func renderDocument(doc bson.D) (string, error) {
	raw, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return "", internal.NewInternalError("failed to encode query document", err)
	}
	return string(raw), nil
}

// unwrapPayload resolves the second encoding layer: result holds a JSON
// string whose content is the real document.
func unwrapPayload(result json.RawMessage) ([]byte, error) {
	trimmed := bytes.TrimSpace(result)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, internal.NewParseError("Failed to parse server response", fmt.Errorf("empty result"))
	}

	if trimmed[0] != '"' {
		return trimmed, nil
	}

	var inner string
	if err := json.Unmarshal(trimmed, &inner); err != nil {
		return nil, internal.NewParseError("Failed to parse server response", err)
	}
	if !json.Valid([]byte(inner)) {
		return nil, internal.NewParseError("Failed to parse server response", fmt.Errorf("result is not a JSON document"))
	}
	return []byte(inner), nil
}

func decodeList(result json.RawMessage) ([]json.RawMessage, error) {
	payload, err := unwrapPayload(result)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, internal.NewParseError("Failed to parse server response", err)
	}

	for i, item := range items {
		normalized, err := normalizeID(item)
		if err != nil {
			return nil, err
		}
		items[i] = normalized
	}
	return items, nil
}

func decodeItem(result json.RawMessage) (json.RawMessage, error) {
	payload, err := unwrapPayload(result)
	if err != nil {
		return nil, err
	}
	return normalizeID(payload)
}

// normalizeID gives every document a canonical string "id": _id.$oid wins,
// then an existing non-empty id, then a scalar _id. Non-objects pass through.
func normalizeID(item json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(item)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return item, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, internal.NewParseError("Failed to parse server response", err)
	}

	id, ok := resolveID(fields)
	if !ok {
		return item, nil
	}

	encoded, err := json.Marshal(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode id", err)
	}
	fields["id"] = encoded

	out, err := json.Marshal(fields)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode object", err)
	}
	return out, nil
}

func resolveID(fields map[string]json.RawMessage) (string, bool) {
	rawOID, hasOID := fields["_id"]

	if hasOID {
		var oid struct {
			OID *string `json:"$oid"`
		}
		if json.Unmarshal(rawOID, &oid) == nil && oid.OID != nil {
			return *oid.OID, true
		}
	}

	if existing, ok := fields["id"]; ok {
		var s string
		if json.Unmarshal(existing, &s) == nil && s != "" {
			return s, false
		}
		if id, ok := scalarString(existing); ok && id != "" {
			return id, true
		}
	}

	if hasOID {
		if id, ok := scalarString(rawOID); ok && id != "" {
			return id, true
		}
	}
	return "", false
}

func scalarString(raw json.RawMessage) (string, bool) {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s, true
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if dec.Decode(&n) == nil {
		if _, err := strconv.ParseFloat(n.String(), 64); err == nil {
			return n.String(), true
		}
	}
	return "", false
}
