// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package util provides generic helpers used throughout the runtime.
package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// UnmarshalJSON parses the JSON encoded data and stores the result in the
// value pointed to by x.
//
// This function is intended to be used in place of the standard json.Unmarshal
// function when json.Number is required.
func UnmarshalJSON(bs []byte, x interface{}) error {
	buf := bytes.NewBuffer(bs)
	decoder := NewJSONDecoder(buf)
	if err := decoder.Decode(x); err != nil {
		return err
	}

	// Since decoder.Decode validates only the first json structure in bytes,
	// check if decoder has more bytes to consume to validate whole input bytes.
	tok, err := decoder.Token()
	if tok != nil {
		return fmt.Errorf("error: invalid character '%s' after top-level value", tok)
	}
	if err != nil && err != io.EOF {
		return err
	}
	return nil
}

// NewJSONDecoder returns a new decoder that reads from r.
//
// This function is intended to be used in place of the standard json.NewDecoder
// when json.Number is required.
func NewJSONDecoder(r io.Reader) *json.Decoder {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	return decoder
}

// MustUnmarshalJSON parses the JSON encoded data and returns the result.
//
// If the data cannot be decoded, this function will panic. This function is for
// test purposes.
func MustUnmarshalJSON(bs []byte) interface{} {
	var x interface{}
	if err := UnmarshalJSON(bs, &x); err != nil {
		panic(err)
	}
	return x
}

// MustMarshalJSON returns the JSON encoding of x
//
// If the data cannot be encoded, this function will panic. This function is for
// test purposes.
func MustMarshalJSON(x interface{}) []byte {
	bs, err := json.Marshal(x)
	if err != nil {
		panic(err)
	}
	return bs
}

// Unmarshal decodes a YAML, JSON or JSON extension value into the specified
// type.
func Unmarshal(bs []byte, v interface{}) error {
	if len(bs) > 2 && bs[0] == 0xef && bs[1] == 0xbb && bs[2] == 0xbf {
		bs = bs[3:] // Strip UTF-8 BOM, see https://www.rfc-editor.org/rfc/rfc8259#section-8.1
	}

	if json.Valid(bs) {
		return UnmarshalJSON(bs, v)
	}
	nbs, err := yamlToJSON(bs)
	if err != nil {
		return err
	}
	return UnmarshalJSON(nbs, v)
}

func yamlToJSON(bs []byte) ([]byte, error) {
	var x interface{}
	if err := yaml.Unmarshal(bs, &x); err != nil {
		return nil, err
	}
	return json.Marshal(convertYAML(x))
}

// convertYAML normalizes YAML map keys to strings so the result can be
// marshalled as JSON.
func convertYAML(x interface{}) interface{} {
	switch x := x.(type) {
	case map[string]interface{}:
		for k, v := range x {
			x[k] = convertYAML(v)
		}
		return x
	case map[interface{}]interface{}:
		result := make(map[string]interface{}, len(x))
		for k, v := range x {
			result[fmt.Sprint(k)] = convertYAML(v)
		}
		return result
	case []interface{}:
		for i := range x {
			x[i] = convertYAML(x[i])
		}
		return x
	}
	return x
}
