package datasource

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-teng/pkg/data"
)

// Format names a serialization understood by Decode.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatTOML    Format = "toml"
	FormatMsgpack Format = "msgpack"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatTOML, FormatMsgpack}
}

// ParseFormat resolves a format name or file extension.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "msgpack", "mpk", "mp":
		return FormatMsgpack, nil
	}
	return "", fmt.Errorf("datasource: unknown format %q", name)
}

// LoadFile reads path, picks the format from its extension and builds a
// tree from it.
func LoadFile(path string) (*data.Root, error) {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("datasource: read %s: %w", path, err)
	}
	root, err := Decode(format, raw)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return root, nil
}

// Decode parses raw in format and builds a tree from it.
func Decode(format Format, raw []byte) (*data.Root, error) {
	value, err := Unmarshal(format, raw)
	if err != nil {
		return nil, err
	}
	return New(value)
}

// Unmarshal parses raw into the host shapes accepted by Build. Mappings come
// back as Object in document order, except for TOML whose tables are
// returned sorted by key.
func Unmarshal(format Format, raw []byte) (any, error) {
	var (
		value any
		err   error
	)
	switch format {
	case FormatJSON:
		value, err = decodeJSON(raw)
	case FormatYAML:
		value, err = decodeYAML(raw)
	case FormatTOML:
		value, err = decodeTOML(raw)
	case FormatMsgpack:
		value, err = decodeMsgpack(raw)
	default:
		return nil, fmt.Errorf("datasource: unknown format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("datasource: decode %s: %w", format, err)
	}
	return value, nil
}

func decodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	value, err := jsonValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after document")
	}
	return value, nil
}

func jsonValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		obj := Object{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key %v is not a string", keyTok)
			}
			value, err := jsonValue(dec)
			if err != nil {
				return nil, err
			}
			obj = append(obj, Member{Key: key, Value: value})
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		items := []any{}
		for dec.More() {
			value, err := jsonValue(dec)
			if err != nil {
				return nil, err
			}
			items = append(items, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return items, nil
	}
	return nil, fmt.Errorf("unexpected delimiter %q", delim)
}

func decodeYAML(raw []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return Object{}, nil
	}
	return yamlValue(&doc)
}

func yamlValue(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Object{}, nil
		}
		return yamlValue(node.Content[0])
	case yaml.AliasNode:
		return yamlValue(node.Alias)
	case yaml.MappingNode:
		obj := make(Object, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			var key string
			if err := node.Content[i].Decode(&key); err != nil {
				return nil, fmt.Errorf("line %d: mapping key: %w", node.Content[i].Line, err)
			}
			value, err := yamlValue(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj = append(obj, Member{Key: key, Value: value})
		}
		return obj, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			value, err := yamlValue(child)
			if err != nil {
				return nil, err
			}
			items = append(items, value)
		}
		return items, nil
	case yaml.ScalarNode:
		var value any
		if err := node.Decode(&value); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return value, nil
	}
	return nil, fmt.Errorf("line %d: unsupported node kind %d", node.Line, node.Kind)
}

func decodeTOML(raw []byte) (any, error) {
	var value map[string]any
	if _, err := toml.Decode(string(raw), &value); err != nil {
		return nil, err
	}
	if value == nil {
		value = map[string]any{}
	}
	return value, nil
}

func decodeMsgpack(raw []byte) (any, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(raw))
	value, err := msgpackValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.PeekCode(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after document")
	}
	return value, nil
}

func msgpackValue(dec *msgpack.Decoder) (any, error) {
	code, err := dec.PeekCode()
	if err != nil {
		return nil, err
	}
	switch {
	case msgpcode.IsFixedMap(code) || code == msgpcode.Map16 || code == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return nil, err
		}
		obj := make(Object, 0, max(n, 0))
		for i := 0; i < n; i++ {
			key, err := dec.DecodeInterfaceLoose()
			if err != nil {
				return nil, err
			}
			value, err := msgpackValue(dec)
			if err != nil {
				return nil, err
			}
			obj = append(obj, Member{Key: fmt.Sprint(key), Value: value})
		}
		return obj, nil
	case msgpcode.IsFixedArray(code) || code == msgpcode.Array16 || code == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		items := make([]any, 0, max(n, 0))
		for i := 0; i < n; i++ {
			value, err := msgpackValue(dec)
			if err != nil {
				return nil, err
			}
			items = append(items, value)
		}
		return items, nil
	}
	return dec.DecodeInterfaceLoose()
}
