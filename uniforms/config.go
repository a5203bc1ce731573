package uniforms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
)

// Config holds the uniforms and push constants declared in a JSON config
// file. Slice order is the file's declaration order, which fixes the
// packed buffer layout.
type Config struct {
	Uniforms      []Value
	PushConstants []Value
}

// LoadConfig reads and parses a uniform config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading uniform config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig parses the two optional top-level sections, "uniforms" and
// "push constants". Each entry maps a name to a [tag, value] pair.
// Entries with an unrecognized tag are logged and dropped; the rest of
// the file still loads. A stream decoder is used instead of unmarshaling
// into a map because Go maps do not preserve key order, and the entry
// order determines each value's buffer offset.
func ParseConfig(data []byte) (*Config, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	cfg := &Config{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		section, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		switch section {
		case "uniforms":
			cfg.Uniforms, err = parseSection(dec, section)
		case "push constants":
			cfg.PushConstants, err = parseSection(dec, section)
		default:
			err = skipValue(dec)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseSection(dec *json.Decoder, section string) ([]Value, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var values []Value
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in %q", tok, section)
		}
		var entry []json.RawMessage
		if err := dec.Decode(&entry); err != nil {
			return nil, fmt.Errorf("entry %q: %w", name, err)
		}
		if len(entry) != 2 {
			return nil, fmt.Errorf("entry %q: want [type, value], got %d elements", name, len(entry))
		}
		v, ok, err := parseEntry(name, entry[0], entry[1])
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", name, err)
		}
		if !ok {
			continue
		}
		values = append(values, v)
	}
	return values, expectDelim(dec, '}')
}

func parseEntry(name string, rawTag, rawValue json.RawMessage) (Value, bool, error) {
	var tag string
	if err := json.Unmarshal(rawTag, &tag); err != nil {
		return Value{}, false, err
	}
	typ, known := ParseType(tag)
	if !known {
		log.Printf("dropping uniform %q: unknown type tag %q", name, tag)
		return Value{}, false, nil
	}
	lit := string(bytes.TrimSpace(rawValue))
	switch typ {
	case F32:
		f, err := strconv.ParseFloat(lit, 32)
		return NewF32(name, float32(f)), true, err
	case F64:
		f, err := strconv.ParseFloat(lit, 64)
		return NewF64(name, f), true, err
	case U32:
		u, err := strconv.ParseUint(lit, 10, 32)
		return NewU32(name, uint32(u)), true, err
	case U64:
		u, err := strconv.ParseUint(lit, 10, 64)
		return NewU64(name, u), true, err
	case I32:
		i, err := strconv.ParseInt(lit, 10, 32)
		return NewI32(name, int32(i)), true, err
	case I64:
		i, err := strconv.ParseInt(lit, 10, 64)
		return NewI64(name, i), true, err
	case Bool:
		var b bool
		err := json.Unmarshal(rawValue, &b)
		return NewBool(name, b), true, err
	}
	return Value{}, false, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func skipValue(dec *json.Decoder) error {
	var v json.RawMessage
	return dec.Decode(&v)
}
