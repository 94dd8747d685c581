package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces canonical JSON for a program.
// CRITICAL: This is the ONLY serialization used for content-addressed
// program identity.
//
// Differences from json.Marshal:
//  1. Object keys sorted bytewise (all keys are ASCII)
//  2. No HTML escaping
//  3. Strings (comments) are NFC normalized
//  4. Constants are decimal strings, never JSON numbers
func MarshalCanonical(p *Program) ([]byte, error) {
	return marshalCanonical(programTree(p))
}

// programTree converts a program into plain maps and slices.
func programTree(p *Program) map[string]any {
	ops := make([]any, 0, p.Len())
	if p != nil {
		for _, op := range p.Ops {
			ops = append(ops, operationTree(op))
		}
	}
	return map[string]any{"ops": ops}
}

func operationTree(op Operation) map[string]any {
	m := map[string]any{"type": op.Type.String()}
	switch op.Type {
	case OpNop:
	case OpStp:
		steps := make([]any, len(op.Steps))
		for i, s := range op.Steps {
			steps[i] = fmt.Sprintf("$%d%s", s.Cell, s.Assign)
		}
		m["steps"] = steps
	case OpLoop:
		m["target"] = op.Target.String()
		m["length"] = fmt.Sprintf("%d", op.LoopLength())
		m["body"] = programTree(op.Body)
	default:
		m["target"] = op.Target.String()
		m["source"] = op.Source.String()
	}
	if op.Comment != "" {
		m["comment"] = op.Comment
	}
	return m
}

func marshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		return marshalCanonicalString(val)
	case int64:
		return []byte(fmt.Sprintf("%d", val)), nil
	case int:
		return []byte(fmt.Sprintf("%d", val)), nil
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case []string:
		arr := make([]any, len(val))
		for i, s := range val {
			arr[i] = s
		}
		return marshalCanonicalArray(arr)
	case []any:
		return marshalCanonicalArray(val)
	case map[string]any:
		return marshalCanonicalObject(val)
	case float64, float32:
		return nil, fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// MarshalCanonicalValue exposes the canonical encoder for plain trees of
// strings, integers, booleans, slices and string-keyed maps. The harness uses
// it for golden snapshots.
func MarshalCanonicalValue(v any) ([]byte, error) {
	return marshalCanonical(v)
}

// marshalCanonicalString produces a JSON string with NFC normalization and
// without HTML escaping. U+2028 and U+2029 are emitted literally.
func marshalCanonicalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return nil, err
	}
	out := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	if !bytes.Contains(out, []byte(`\u202`)) {
		return out, nil
	}
	// json.Encoder escapes U+2028/U+2029 for JavaScript; undo that, but
	// leave an escaped backslash followed by "u2028" alone.
	var sb strings.Builder
	for i := 0; i < len(out); i++ {
		if out[i] == '\\' && i+1 < len(out) && out[i+1] == '\\' {
			sb.WriteString(`\\`)
			i++
			continue
		}
		if bytes.HasPrefix(out[i:], []byte(`\u2028`)) {
			sb.WriteString("\u2028")
			i += 5
			continue
		}
		if bytes.HasPrefix(out[i:], []byte(`\u2029`)) {
			sb.WriteString("\u2029")
			i += 5
			continue
		}
		sb.WriteByte(out[i])
	}
	return []byte(sb.String()), nil
}

func marshalCanonicalArray(arr []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := marshalCanonical(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalCanonicalObject(obj map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalCanonicalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := marshalCanonical(obj[k])
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
