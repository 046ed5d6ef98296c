package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// inboundSchemas maps message type to its compiled schema. Compiled once at
// package init; a bad embedded schema is a build defect, so init panics.
var inboundSchemas = map[string]*jsonschema.Schema{
	TypeHello:               mustCompile("hello.schema.json"),
	TypeSendTradeRequest:    mustCompile("send_trade_request.schema.json"),
	TypeRespondTradeRequest: mustCompile("respond_trade_request.schema.json"),
	TypeUpdateOffer:         mustCompile("update_offer.schema.json"),
	TypeConfirmOffer:        mustCompile("confirm_offer.schema.json"),
	TypeCancelTrade:         mustCompile("cancel_trade.schema.json"),
}

func mustCompile(name string) *jsonschema.Schema {
	raw, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		panic(fmt.Sprintf("schema %s: %v", name, err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, bytes.NewReader(raw)); err != nil {
		panic(fmt.Sprintf("schema %s: %v", name, err))
	}
	s, err := c.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("schema %s: %v", name, err))
	}
	return s
}

// ValidateInbound checks a raw client frame against the schema for its type.
// Unknown types are rejected; callers route on BaseMessage.Type first.
func ValidateInbound(msgType string, raw []byte) error {
	s, ok := inboundSchemas[msgType]
	if !ok {
		return fmt.Errorf("unknown message type %q", msgType)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return s.Validate(v)
}
