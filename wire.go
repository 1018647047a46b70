package japi

import (
	"bytes"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"
)

// DecodeValue decodes a single JSON value from data. Numbers decode as
// json.Number so integer precision survives the trip through any.
func DecodeValue(data []byte) (any, error) {
	return DecodeValueReader(bytes.NewReader(data))
}

// DecodeValueReader decodes a single JSON value from r. Trailing non-space
// input is an error.
func DecodeValueReader(r io.Reader) (any, error) {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("japi: decode: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, fmt.Errorf("japi: decode: trailing data after JSON value")
	}
	return v, nil
}

// EncodeValue encodes v as compact JSON.
func EncodeValue(v any) ([]byte, error) {
	return gojson.Marshal(v)
}

// EncodeValueIndent encodes v as indented JSON for human output.
func EncodeValueIndent(v any) ([]byte, error) {
	return gojson.MarshalIndent(v, "", "  ")
}
