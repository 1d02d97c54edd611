package agent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/oka-k/Screenshot/internal/vault"
)

var ErrInvalidCredentials = errors.New("agent: invalid service account credentials")

const serviceAccountSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["type", "project_id", "private_key_id", "private_key", "client_email", "client_id"],
  "properties": {
    "type":           {"type": "string", "minLength": 1},
    "project_id":     {"type": "string", "minLength": 1},
    "private_key_id": {"type": "string", "minLength": 1},
    "private_key":    {"type": "string", "minLength": 1},
    "client_email":   {"type": "string", "minLength": 1},
    "client_id":      {"type": "string", "minLength": 1}
  }
}`

var credentialSchema = mustSchema(serviceAccountSchema)

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(err)
	}
	return schema
}

// Credentials are the service-account fields the uploader needs.
type Credentials struct {
	ProjectID   string
	ClientEmail string
	Document    vault.Document
}

func ValidateCredentials(doc vault.Document) (Credentials, error) {
	b, err := doc.Encode()
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	res, err := credentialSchema.Validate(gojsonschema.NewBytesLoader(b))
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return Credentials{}, fmt.Errorf("%w: %s", ErrInvalidCredentials, strings.Join(msgs, "; "))
	}
	project, _ := doc.String("project_id")
	email, _ := doc.String("client_email")
	return Credentials{ProjectID: project, ClientEmail: email, Document: doc}, nil
}
