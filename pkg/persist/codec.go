package persist

import (
	"encoding/json"

	goyaml "github.com/goccy/go-yaml"
)

// Codec serializes values on their way to a sink.
type Codec interface {
	Marshal(value any) ([]byte, error)
	Ext() string
}

// JSONCodec serializes with encoding/json. The zero value is ready to use.
type JSONCodec struct {
	Indent string
}

// Marshal implements Codec.
func (c JSONCodec) Marshal(value any) ([]byte, error) {
	if c.Indent != "" {
		return json.MarshalIndent(value, "", c.Indent)
	}
	return json.Marshal(value)
}

// Ext implements Codec.
func (JSONCodec) Ext() string { return ".json" }

// YAMLCodec serializes with goccy/go-yaml.
type YAMLCodec struct{}

// Marshal implements Codec.
func (YAMLCodec) Marshal(value any) ([]byte, error) {
	return goyaml.Marshal(value)
}

// Ext implements Codec.
func (YAMLCodec) Ext() string { return ".yaml" }
