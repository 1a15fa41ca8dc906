package sqlite

import "encoding/json"

// JSONL file names in DataDir.
const (
	typesJSONL        = "types.jsonl"
	productCmptsJSONL = "product_cmpts.jsonl"
)

// typeJSON is one line of types.jsonl. Document holds the type definition.
type typeJSON struct {
	Name      string          `json:"name"`
	Supertype string          `json:"supertype,omitempty"`
	UpdatedAt string          `json:"updated_at"`
	Document  json.RawMessage `json:"document"`
}

// productCmptJSON is one line of product_cmpts.jsonl. Document holds the
// component's element tree.
type productCmptJSON struct {
	Name       string          `json:"name"`
	TypeName   string          `json:"type_name"`
	Template   string          `json:"template,omitempty"`
	IsTemplate bool            `json:"is_template,omitempty"`
	UpdatedAt  string          `json:"updated_at"`
	Document   json.RawMessage `json:"document"`
}
