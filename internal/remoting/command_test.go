package remoting

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestCommandFrameRoundTrip(t *testing.T) {
	cmd := NewCommand(CodePopMessage, map[string]string{
		"consumerGroup": "g",
		"topic":         "t",
	})
	cmd.Body = []byte("payload")

	frame, err := cmd.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	total := binary.BigEndian.Uint32(frame[:4])
	if int(total) != len(frame)-4 {
		t.Fatalf("frame length field %d, want %d", total, len(frame)-4)
	}

	decoded, err := Decode(frame[4:])
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Code != cmd.Code || decoded.Opaque != cmd.Opaque {
		t.Fatalf("decoded %+v, want code=%d opaque=%d", decoded, cmd.Code, cmd.Opaque)
	}
	if decoded.Ext("topic") != "t" || decoded.Ext("consumerGroup") != "g" {
		t.Fatalf("ext fields lost: %+v", decoded.ExtFields)
	}
	if !bytes.Equal(decoded.Body, cmd.Body) {
		t.Fatalf("body %q, want %q", decoded.Body, cmd.Body)
	}
}

func TestResponseFlag(t *testing.T) {
	resp := NewResponse(RespSuccess, 7, "ok")
	if !resp.IsResponse() {
		t.Fatal("response not flagged")
	}
	if resp.Opaque != 7 {
		t.Fatalf("opaque %d, want 7", resp.Opaque)
	}

	req := NewCommand(CodeHeartbeat, nil)
	if req.IsResponse() {
		t.Fatal("request flagged as response")
	}
	req.MarkOneway()
	if !req.IsOneway() {
		t.Fatal("oneway flag not set")
	}
}

func TestOpaqueUnique(t *testing.T) {
	a := NewCommand(CodeHeartbeat, nil)
	b := NewCommand(CodeHeartbeat, nil)
	if a.Opaque == b.Opaque {
		t.Fatal("consecutive commands share an opaque id")
	}
}

func TestDecodeRejectsBadFrames(t *testing.T) {
	if _, err := Decode([]byte{0, 0}); err == nil {
		t.Fatal("expected error for short frame")
	}
	// Header length larger than the frame.
	frame := make([]byte, 8)
	binary.BigEndian.PutUint32(frame[:4], 100)
	if _, err := Decode(frame); err == nil {
		t.Fatal("expected error for oversized header length")
	}
}

func TestTransientStoreCodes(t *testing.T) {
	for _, code := range []int32{RespFlushDiskTimeout, RespFlushSlaveTimeout, RespSlaveNotAvailable} {
		if !IsTransientStoreCode(code) {
			t.Errorf("code %d not transient", code)
		}
	}
	for _, code := range []int32{RespSuccess, RespSystemError, RespTopicNotExist} {
		if IsTransientStoreCode(code) {
			t.Errorf("code %d wrongly transient", code)
		}
	}
}
