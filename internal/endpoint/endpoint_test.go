package endpoint

import (
	"errors"
	"testing"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in      string
		want    Address
		wantErr bool
	}{
		{in: "10.0.0.1:10911", want: Address{Host: "10.0.0.1", Port: 10911}},
		{in: "broker.example.com:8081", want: Address{Host: "broker.example.com", Port: 8081}},
		{in: "[::1]:9876", want: Address{Host: "::1", Port: 9876}},
		{in: " 10.0.0.1:80 ", want: Address{Host: "10.0.0.1", Port: 80}},
		{in: "nohost", wantErr: true},
		{in: "host:notaport", wantErr: true},
		{in: "host:0", wantErr: true},
		{in: "host:70000", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseAddress(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidAddress) {
				t.Errorf("ParseAddress(%q) = %v, want ErrInvalidAddress", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAddress(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAddress(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestAddressStringRoundTrip(t *testing.T) {
	for _, s := range []string{"10.0.0.1:10911", "broker.example.com:8081", "[::1]:9876"} {
		addr, err := ParseAddress(s)
		if err != nil {
			t.Fatalf("ParseAddress(%q): %v", s, err)
		}
		again, err := ParseAddress(addr.String())
		if err != nil {
			t.Fatalf("ParseAddress(round trip %q): %v", addr.String(), err)
		}
		if again != addr {
			t.Errorf("round trip %q -> %q", s, addr.String())
		}
	}
}

func TestSchemeOf(t *testing.T) {
	tests := []struct {
		host string
		want Scheme
	}{
		{"10.0.0.1", SchemeIPv4},
		{"::1", SchemeIPv6},
		{"broker.example.com", SchemeDomain},
		{"", SchemeUnknown},
	}
	for _, tt := range tests {
		if got := SchemeOf(tt.host); got != tt.want {
			t.Errorf("SchemeOf(%q) = %d, want %d", tt.host, got, tt.want)
		}
	}
}

func TestParseEndpoints(t *testing.T) {
	eps, err := ParseEndpoints("10.0.0.1:10911;10.0.0.2:10911")
	if err != nil {
		t.Fatalf("ParseEndpoints: %v", err)
	}
	if len(eps.Addresses) != 2 || eps.Scheme != SchemeIPv4 {
		t.Fatalf("got %+v", eps)
	}
	if eps.String() != "10.0.0.1:10911;10.0.0.2:10911" {
		t.Fatalf("render %q", eps.String())
	}

	if _, err := ParseEndpoints(""); err == nil {
		t.Fatal("empty endpoint list should fail")
	}
	if _, err := ParseEndpoints("bad"); err == nil {
		t.Fatal("malformed endpoint list should fail")
	}
}

func TestConverters(t *testing.T) {
	if got := (IdentityConverter{}).Convert("10.0.0.1:10911"); got != "10.0.0.1:10911" {
		t.Fatalf("identity converter rewrote %q", got)
	}

	c := MapConverter{Mapping: map[string]string{"10.0.0.1:10911": "broker-a.example.com:10911"}}
	if got := c.Convert("10.0.0.1:10911"); got != "broker-a.example.com:10911" {
		t.Fatalf("map converter got %q", got)
	}
	if got := c.Convert("10.0.0.9:10911"); got != "10.0.0.9:10911" {
		t.Fatalf("unmapped address rewritten to %q", got)
	}
}
