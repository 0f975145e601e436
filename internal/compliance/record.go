package compliance

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/zombor/facture-ocr/internal/extraction"
)

// ErrInvalidRecord is returned when an externally produced invoice record
// does not follow the invoice field-name contract.
var ErrInvalidRecord = errors.New("invalid invoice record")

//go:embed record.schema.json
var recordSchemaJSON []byte

var recordSchema = func() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("record.schema.json", bytes.NewReader(recordSchemaJSON)); err != nil {
		panic(fmt.Sprintf("add record schema: %v", err))
	}
	return compiler.MustCompile("record.schema.json")
}()

// DecodeRecord validates a JSON invoice record against the record schema and
// decodes it. Records from any producer are accepted as long as they use the
// same field names and types as extraction.Invoice.
func DecodeRecord(data []byte) (*extraction.Invoice, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if err := recordSchema.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	var inv extraction.Invoice
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if inv.Currency == "" {
		inv.Currency = "EUR"
	}
	if inv.Lines == nil && inv.Text != "" {
		inv.Lines = extraction.SplitLines(inv.Text)
	}
	return &inv, nil
}
