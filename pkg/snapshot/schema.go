// SPDX-License-Identifier: GPL-3.0-or-later

package snapshot

import (
	"encoding/json"
	"net/netip"
	"reflect"

	"github.com/invopop/jsonschema"
)

// GenerateJSONSchema generates the JSON schema of a snapshot Document.
func GenerateJSONSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		Mapper:                    mapNetipTypes,
	}
	schema := reflector.Reflect(&Document{})
	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, err
	}
	schemaJSON = append(schemaJSON, byte('\n'))
	return schemaJSON, nil
}

func mapNetipTypes(t reflect.Type) *jsonschema.Schema {
	switch t {
	case reflect.TypeOf(netip.Addr{}):
		return &jsonschema.Schema{Type: "string", Format: "ip"}
	case reflect.TypeOf(netip.Prefix{}):
		return &jsonschema.Schema{Type: "string", Description: "address with prefix length, e.g. 10.0.0.1/24"}
	}
	return nil
}
