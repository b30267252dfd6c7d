package cookiemap

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "cookiesmap.schema.json"

// cookiesMapSchema accepts documents written by older clients too, so
// unknown properties are allowed everywhere.
const cookiesMapSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "updateTime": {"type": "integer"},
    "createTime": {"type": "integer"},
    "domainCookieMap": {
      "type": "object",
      "additionalProperties": {"$ref": "#/$defs/domainEntry"}
    }
  },
  "$defs": {
    "domainEntry": {
      "type": "object",
      "properties": {
        "updateTime": {"type": "integer"},
        "createTime": {"type": "integer"},
        "cookies": {"type": "array", "items": {"$ref": "#/$defs/cookie"}},
        "localStorageItems": {
          "type": "array",
          "items": {
            "type": "object",
            "properties": {"key": {"type": "string"}, "value": {"type": "string"}}
          }
        }
      }
    },
    "cookie": {
      "type": "object",
      "properties": {
        "name": {"type": "string"},
        "value": {"type": "string"},
        "domain": {"type": "string"},
        "path": {"type": "string"},
        "secure": {"type": "boolean"},
        "httpOnly": {"type": "boolean"},
        "sameSite": {"type": "string"},
        "expirationDate": {"type": "number"},
        "session": {"type": "boolean"}
      }
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(cookiesMapSchema))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
})

func encodeJSON(m *CookiesMap) (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeJSON(blob string) (*CookiesMap, error) {
	sch, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(blob))
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(inst); err != nil {
		return nil, err
	}
	var m CookiesMap
	if err := json.Unmarshal([]byte(blob), &m); err != nil {
		return nil, err
	}
	return &m, nil
}
