package codec

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error)   { return json.Marshal(v) }
func (JSONCodec) Unmarshal(b []byte, v any) error { return json.Unmarshal(b, v) }

type YAMLCodec struct{}

func (YAMLCodec) Marshal(v any) ([]byte, error)   { return yaml.Marshal(v) }
func (YAMLCodec) Unmarshal(b []byte, v any) error { return yaml.Unmarshal(b, v) }

// ByName returns the codec registered under name ("json" or "yaml").
func ByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "yaml", "yml":
		return YAMLCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}
