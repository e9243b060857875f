// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Unikraft GmbH. All rights reserved.

package server

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// requestSchema is the JSON Schema every incoming request line is
// validated against before it reaches the engine (spec.md §6, §7 "Invalid
// JSON / unsupported protocol version" → error, state unchanged). The
// shape is identical across versions 1-3; version skew is handled
// separately by versionSupported, since the wire shape itself hasn't
// changed across the three supported versions.
const requestSchemaJSON = `{
	"type": "object",
	"properties": {
		"version": { "type": "integer" },
		"set": { "type": "object" },
		"load": { "type": ["string", "null"] },
		"save": { "type": ["string", "null"] },
		"reset": {
			"type": "array",
			"items": { "type": "string" }
		}
	},
	"required": ["version"]
}`

var requestSchemaLoader = gojsonschema.NewStringLoader(requestSchemaJSON)

// validateRequest checks raw request bytes against requestSchemaJSON,
// returning a human-readable error describing every violation.
func validateRequest(raw []byte) error {
	result, err := gojsonschema.Validate(requestSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("malformed request: %w", err)
	}
	if !result.Valid() {
		var msg string
		for i, e := range result.Errors() {
			if i > 0 {
				msg += "; "
			}
			msg += e.String()
		}
		return fmt.Errorf("request does not match protocol schema: %s", msg)
	}
	return nil
}
