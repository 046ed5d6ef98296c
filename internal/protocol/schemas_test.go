package protocol

import "testing"

func TestValidateInbound_Samples(t *testing.T) {
	ok := func(msgType, frame string) {
		t.Helper()
		if err := ValidateInbound(msgType, []byte(frame)); err != nil {
			t.Fatalf("validate %s: %v", msgType, err)
		}
	}
	bad := func(msgType, frame string) {
		t.Helper()
		if err := ValidateInbound(msgType, []byte(frame)); err == nil {
			t.Fatalf("expected %s frame rejected: %s", msgType, frame)
		}
	}

	ok(TypeHello, `{"type":"HELLO","protocol_version":"1.0","actor_name":"alice"}`)
	bad(TypeHello, `{"type":"HELLO","protocol_version":"1.0","actor_name":""}`)

	ok(TypeSendTradeRequest, `{"type":"SEND_TRADE_REQUEST","protocol_version":"1.0","id":"c1","target":"bob"}`)
	bad(TypeSendTradeRequest, `{"type":"SEND_TRADE_REQUEST","protocol_version":"1.0","id":"c1"}`)

	ok(TypeRespondTradeRequest, `{"type":"RESPOND_TRADE_REQUEST","protocol_version":"1.0","id":"c2","from":"alice","accept":true}`)
	bad(TypeRespondTradeRequest, `{"type":"RESPOND_TRADE_REQUEST","protocol_version":"1.0","id":"c2","from":"alice","accept":"yes"}`)

	ok(TypeUpdateOffer, `{"type":"UPDATE_OFFER","protocol_version":"1.0","id":"c3","coins":100,"item_refs":["dragon"]}`)
	bad(TypeUpdateOffer, `{"type":"UPDATE_OFFER","protocol_version":"1.0","id":"c3","coins":1.5,"item_refs":[]}`)

	ok(TypeConfirmOffer, `{"type":"CONFIRM_OFFER","protocol_version":"1.0","id":"c4"}`)
	ok(TypeCancelTrade, `{"type":"CANCEL_TRADE","protocol_version":"1.0","id":"c5"}`)

	if err := ValidateInbound("TRADE_NOTIFICATION", []byte(`{}`)); err == nil {
		t.Fatalf("expected server-only type rejected")
	}
}
