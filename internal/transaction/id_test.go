package transaction

import (
	"errors"
	"testing"
)

func TestIDRoundTrip(t *testing.T) {
	id := NewID("broker-a", "tx-broker-1", 9000, 42)
	if id.ProxyTransactionID == "" {
		t.Fatal("proxy transaction id not minted")
	}

	decoded, err := DecodeID(id.Encode())
	if err != nil {
		t.Fatalf("DecodeID: %v", err)
	}
	if decoded != id {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", decoded, id)
	}
}

func TestIDUnique(t *testing.T) {
	a := NewID("b", "t", 0, 0)
	b := NewID("b", "t", 0, 0)
	if a.ProxyTransactionID == b.ProxyTransactionID {
		t.Fatal("consecutive ids share a proxy transaction id")
	}
}

func TestDecodeIDMalformed(t *testing.T) {
	cases := []string{
		"",
		"not-base64!!!",
		"YWJj", // decodes but wrong field count
	}
	for _, s := range cases {
		if _, err := DecodeID(s); !errors.Is(err, ErrMalformedTransactionID) {
			t.Errorf("DecodeID(%q) = %v, want ErrMalformedTransactionID", s, err)
		}
	}
}
