package remoting

import (
	"bytes"
	"testing"
)

func TestPropertiesRoundTrip(t *testing.T) {
	props := map[string]string{
		PropertyTags:         "tagA",
		PropertyKeys:         "k1 k2",
		PropertyUniqClientID: "msg-1",
		"custom":             "value",
	}
	decoded := UnmarshalProperties(MarshalProperties(props))
	if len(decoded) != len(props) {
		t.Fatalf("got %d properties, want %d", len(decoded), len(props))
	}
	for k, v := range props {
		if decoded[k] != v {
			t.Errorf("property %q = %q, want %q", k, decoded[k], v)
		}
	}
}

func TestMarshalPropertiesEmpty(t *testing.T) {
	if MarshalProperties(nil) != "" {
		t.Fatal("nil map should marshal empty")
	}
	if len(UnmarshalProperties("")) != 0 {
		t.Fatal("empty string should unmarshal empty")
	}
}

func sampleMessage() *MessageExt {
	return &MessageExt{
		Message: Message{
			Topic: "orders",
			Flag:  0,
			Properties: map[string]string{
				PropertyTags:         "tagA",
				PropertyUniqClientID: "msg-42",
			},
			Body: []byte("hello"),
		},
		QueueID:         3,
		QueueOffset:     42,
		CommitLogOffset: 9000,
		SysFlag:         0,
		BornTimestamp:   1700000000000,
		BornHost:        "192.168.1.10:52345",
		StoreTimestamp:  1700000000100,
		StoreHost:       "10.0.0.1:10911",
		ReconsumeTimes:  1,
	}
}

func TestMessageEncodeDecodeRoundTrip(t *testing.T) {
	body, err := EncodeMessageExt(sampleMessage())
	if err != nil {
		t.Fatalf("EncodeMessageExt: %v", err)
	}

	msgs, err := DecodeMessageList(body)
	if err != nil {
		t.Fatalf("DecodeMessageList: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}

	got := msgs[0]
	want := sampleMessage()
	if got.Topic != want.Topic || got.QueueID != want.QueueID || got.QueueOffset != want.QueueOffset {
		t.Fatalf("placement mismatch: %+v", got)
	}
	if got.CommitLogOffset != want.CommitLogOffset || got.ReconsumeTimes != want.ReconsumeTimes {
		t.Fatalf("metadata mismatch: %+v", got)
	}
	if !bytes.Equal(got.Body, want.Body) {
		t.Fatalf("body %q, want %q", got.Body, want.Body)
	}
	if got.Property(PropertyTags) != "tagA" {
		t.Fatalf("tag lost: %v", got.Properties)
	}
	if got.MsgID != "msg-42" {
		t.Fatalf("msg id %q, want msg-42", got.MsgID)
	}
	if got.BornHost != want.BornHost || got.StoreHost != want.StoreHost {
		t.Fatalf("hosts %q/%q, want %q/%q", got.BornHost, got.StoreHost, want.BornHost, want.StoreHost)
	}
}

func TestDecodeMessageListMultiple(t *testing.T) {
	var body []byte
	for i := 0; i < 3; i++ {
		msg := sampleMessage()
		msg.QueueOffset = int64(42 + i)
		encoded, err := EncodeMessageExt(msg)
		if err != nil {
			t.Fatalf("EncodeMessageExt: %v", err)
		}
		body = append(body, encoded...)
	}

	msgs, err := DecodeMessageList(body)
	if err != nil {
		t.Fatalf("DecodeMessageList: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	for i, m := range msgs {
		if m.QueueOffset != int64(42+i) {
			t.Errorf("message %d offset %d, want %d (order preserved)", i, m.QueueOffset, 42+i)
		}
	}
}

func TestDecodeMessageListBadMagic(t *testing.T) {
	body, err := EncodeMessageExt(sampleMessage())
	if err != nil {
		t.Fatalf("EncodeMessageExt: %v", err)
	}
	body[4] ^= 0xFF // corrupt magic
	if _, err := DecodeMessageList(body); err == nil {
		t.Fatal("expected error for corrupted magic code")
	}
}

func TestEncodeBatchBody(t *testing.T) {
	msgs := []*Message{
		{Topic: "t", Body: []byte("a"), Properties: map[string]string{PropertyTags: "x"}},
		{Topic: "t", Body: []byte("bb")},
	}
	body, err := EncodeBatchBody(msgs)
	if err != nil {
		t.Fatalf("EncodeBatchBody: %v", err)
	}
	if len(body) == 0 {
		t.Fatal("empty batch body")
	}
}
