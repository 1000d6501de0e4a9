package config

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/c360/streamsift/errors"
)

// configSchema is the JSON Schema (draft-07) for the configuration file.
// It catches structural problems before unmarshalling; semantic rules
// live in Config.Validate.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["nats"],
  "additionalProperties": false,
  "properties": {
    "version": {"type": "string"},
    "logging": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "level": {"type": "string", "enum": ["debug", "info", "warn", "error"]},
        "format": {"type": "string", "enum": ["text", "json"]}
      }
    },
    "nats": {
      "type": "object",
      "required": ["url"],
      "additionalProperties": false,
      "properties": {
        "url": {"type": "string", "minLength": 1},
        "name": {"type": "string"},
        "username": {"type": "string"},
        "password": {"type": "string"},
        "token": {"type": "string"},
        "max_reconnects": {"type": "integer"},
        "reconnect_wait": {"type": "string"},
        "timeout": {"type": "string"},
        "drain_timeout": {"type": "string"},
        "tls_cert_file": {"type": "string"},
        "tls_key_file": {"type": "string"},
        "tls_ca_file": {"type": "string"}
      }
    },
    "metrics": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enabled": {"type": "boolean"},
        "port": {"type": "integer", "minimum": 1, "maximum": 65535},
        "path": {"type": "string"}
      }
    },
    "pipelines": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["input_subject", "output_subjects"],
        "additionalProperties": false,
        "properties": {
          "input_subject": {"type": "string", "minLength": 1},
          "output_subjects": {
            "type": "array",
            "items": {"type": "string", "minLength": 1},
            "minItems": 1
          },
          "conditions": {"type": "array"},
          "buffer_size": {"type": "integer", "minimum": 1},
          "overflow": {"type": "string", "enum": ["drop_oldest", "drop_newest"]},
          "trace_enabled": {"type": "boolean"}
        }
      }
    }
  }
}`

// validateSchema checks raw config bytes against the embedded schema.
func validateSchema(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(configSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return errors.WrapInvalid(err, "Config", "validateSchema", "schema validation failed")
	}
	if result.Valid() {
		return nil
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "validateSchema",
		"config does not match schema: "+strings.Join(problems, "; "))
}
