package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// templateSentinel is what n8n leaves behind for an unresolved expression.
const templateSentinel = "{--}}"

// knownReplyKeys are probed in order; the first non-empty string wins.
var knownReplyKeys = []string{"message", "response", "content", "text", "output", "result"}

type payloadKind int

const (
	payloadOther payloadKind = iota
	payloadString
	payloadObject
)

type payloadField struct {
	Key   string
	Value json.RawMessage
}

// webhookPayload is a decoded webhook body. Arrays are kept as objects keyed
// by index so that n8n's item lists go through the same matchers.
type webhookPayload struct {
	kind   payloadKind
	str    string
	fields []payloadField
}

func (p *webhookPayload) lookup(key string) (json.RawMessage, bool) {
	for _, f := range p.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

func decodeWebhookPayload(raw []byte) (*webhookPayload, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	p := &webhookPayload{}
	switch t := tok.(type) {
	case json.Delim:
		var fields []payloadField
		switch t {
		case '{':
			fields, err = readObjectFields(dec)
		case '[':
			fields, err = readArrayFields(dec)
		default:
			err = fmt.Errorf("unexpected delimiter %q", t)
		}
		if err != nil {
			return nil, err
		}
		p.kind = payloadObject
		p.fields = orderFields(fields)
	case string:
		p.kind = payloadString
		p.str = t
	default:
		p.kind = payloadOther
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, err
	}
	return p, nil
}

func readObjectFields(dec *json.Decoder) ([]payloadField, error) {
	var fields []payloadField
	seen := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		// duplicate keys keep their first position and the last value
		if i, dup := seen[key]; dup {
			fields[i].Value = value
			continue
		}
		seen[key] = len(fields)
		fields = append(fields, payloadField{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}

func readArrayFields(dec *json.Decoder) ([]payloadField, error) {
	var fields []payloadField
	for i := 0; dec.More(); i++ {
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fields = append(fields, payloadField{Key: strconv.Itoa(i), Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}

// orderFields puts index-like keys first in ascending order, followed by the
// remaining keys in document order.
func orderFields(fields []payloadField) []payloadField {
	sort.SliceStable(fields, func(i, j int) bool {
		ni, iok := arrayIndex(fields[i].Key)
		nj, jok := arrayIndex(fields[j].Key)
		switch {
		case iok && jok:
			return ni < nj
		case iok:
			return true
		default:
			return false
		}
	})
	return fields
}

func arrayIndex(key string) (uint64, bool) {
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil || n == 1<<32-1 {
		return 0, false
	}
	if strconv.FormatUint(n, 10) != key {
		return 0, false
	}
	return n, true
}

func rawString(v json.RawMessage) (string, bool) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || v[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

func isPlaceholder(s string) bool {
	return s == templateSentinel || strings.HasPrefix(s, "{-")
}

// shapeMatcher tries one known payload layout. A non-nil error means the
// layout was recognised but holds nothing usable.
type shapeMatcher struct {
	name  string
	match func(p *webhookPayload) (string, bool, error)
}

var replyShapes = []shapeMatcher{
	{name: "known_key", match: matchKnownKey},
	{name: "index_zero", match: matchIndexZero},
	{name: "first_string_value", match: matchFirstStringValue},
	{name: "bare_string", match: matchBareString},
}

// extractReply runs the matchers in priority order.
func extractReply(p *webhookPayload) (reply string, shape string, err error) {
	for _, m := range replyShapes {
		reply, ok, err := m.match(p)
		if err != nil {
			return "", m.name, err
		}
		if ok {
			return reply, m.name, nil
		}
	}
	return "", "", ErrUnresolvableShape
}

func matchKnownKey(p *webhookPayload) (string, bool, error) {
	if p.kind != payloadObject {
		return "", false, nil
	}
	for _, key := range knownReplyKeys {
		v, ok := p.lookup(key)
		if !ok {
			continue
		}
		if s, ok := rawString(v); ok && s != "" {
			return s, true, nil
		}
	}
	return "", false, nil
}

func matchIndexZero(p *webhookPayload) (string, bool, error) {
	if p.kind != payloadObject {
		return "", false, nil
	}
	v, ok := p.lookup("0")
	if !ok {
		return "", false, nil
	}

	v = bytes.TrimSpace(v)
	if len(v) > 0 && v[0] == '{' {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(v, &nested); err != nil {
			return "", false, nil
		}
		output, ok := nested["output"]
		if !ok {
			return "", false, nil
		}
		s, isString := rawString(output)
		if !isString {
			return "", false, fmt.Errorf("%w: nested output is not a string", ErrUnresolvableShape)
		}
		if s == "" {
			return "", false, nil
		}
		return s, true, nil
	}

	if s, ok := rawString(v); ok && strings.TrimSpace(s) != "" && s != templateSentinel {
		return s, true, nil
	}
	return "", false, nil
}

func matchFirstStringValue(p *webhookPayload) (string, bool, error) {
	if p.kind != payloadObject {
		return "", false, nil
	}
	for _, f := range p.fields {
		s, ok := rawString(f.Value)
		if !ok || strings.TrimSpace(s) == "" || isPlaceholder(s) {
			continue
		}
		return s, true, nil
	}
	return "", false, nil
}

func matchBareString(p *webhookPayload) (string, bool, error) {
	if p.kind == payloadString && p.str != "" {
		return p.str, true, nil
	}
	return "", false, nil
}
