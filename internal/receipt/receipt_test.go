package receipt

import (
	"errors"
	"testing"
)

func TestHandleRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		handle Handle
	}{
		{
			name: "with queue offset",
			handle: Handle{
				StartOffset:    100,
				PopTime:        1700000000000,
				InvisibleTime:  30000,
				ReviveQueueID:  2,
				Topic:          "orders",
				BrokerName:     "broker-a",
				QueueID:        3,
				QueueOffset:    42,
				HasQueueOffset: true,
			},
		},
		{
			name: "without queue offset",
			handle: Handle{
				StartOffset:   0,
				PopTime:       1,
				InvisibleTime: 5000,
				ReviveQueueID: 0,
				Topic:         "t",
				BrokerName:    "b",
				QueueID:       0,
			},
		},
		{
			name: "negative offsets",
			handle: Handle{
				StartOffset:    -1,
				PopTime:        1700000000000,
				InvisibleTime:  60000,
				ReviveQueueID:  7,
				Topic:          "%RETRY%group",
				BrokerName:     "broker-b",
				QueueID:        11,
				QueueOffset:    -1,
				HasQueueOffset: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := Decode(tt.handle.Encode())
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if decoded != tt.handle {
				t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", decoded, tt.handle)
			}
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := []string{
		"",
		"1 2 3",
		"x 2 3 4 t b 5",
		"1 2 3 4 t b notanumber",
		"1 2 3 4 t b 5 6 7",
		"1 2 3 4  b 5", // empty topic
	}
	for _, s := range cases {
		if _, err := Decode(s); !errors.Is(err, ErrMalformedHandle) {
			t.Errorf("Decode(%q) = %v, want ErrMalformedHandle", s, err)
		}
	}
}

func TestParseStartOffsetInfo(t *testing.T) {
	got, err := ParseStartOffsetInfo("t 0 100;t 1 200")
	if err != nil {
		t.Fatalf("ParseStartOffsetInfo: %v", err)
	}
	if got[QueueKey{Topic: "t", QueueID: 0}] != 100 || got[QueueKey{Topic: "t", QueueID: 1}] != 200 {
		t.Fatalf("got %v", got)
	}
}

func TestParseMsgOffsetInfoPreservesOrder(t *testing.T) {
	got, err := ParseMsgOffsetInfo("t 3 42,43,45")
	if err != nil {
		t.Fatalf("ParseMsgOffsetInfo: %v", err)
	}
	offsets := got[QueueKey{Topic: "t", QueueID: 3}]
	want := []int64{42, 43, 45}
	if len(offsets) != len(want) {
		t.Fatalf("got %v, want %v", offsets, want)
	}
	for i := range want {
		if offsets[i] != want[i] {
			t.Fatalf("got %v, want %v", offsets, want)
		}
	}
}

func TestParseOrderCountInfo(t *testing.T) {
	got, err := ParseOrderCountInfo("t 0 3")
	if err != nil {
		t.Fatalf("ParseOrderCountInfo: %v", err)
	}
	if got[QueueKey{Topic: "t", QueueID: 0}] != 3 {
		t.Fatalf("got %v", got)
	}
}

func TestParseEmptyInfo(t *testing.T) {
	got, err := ParseStartOffsetInfo("")
	if err != nil {
		t.Fatalf("ParseStartOffsetInfo(\"\"): %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %v, want empty", got)
	}
}

func TestParseMalformedInfo(t *testing.T) {
	if _, err := ParseStartOffsetInfo("t 0"); err == nil {
		t.Fatal("expected error for short record")
	}
	if _, err := ParseMsgOffsetInfo("t 0 1,x"); err == nil {
		t.Fatal("expected error for bad offset")
	}
}
