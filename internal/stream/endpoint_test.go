package stream

import "testing"

func TestEndpoint(t *testing.T) {
	cases := []struct {
		base, auction, want string
	}{
		{"http://localhost:8080", "", "ws://localhost:8080/events/ws"},
		{"https://api.example.com/", "0xab", "wss://api.example.com/events/ws?auction=0xab"},
		{"ws://127.0.0.1:1/stream", "a b", "ws://127.0.0.1:1/stream?auction=a+b"},
		{"ftp://nope", "", ""},
	}
	for _, tc := range cases {
		if got := Endpoint(tc.base, tc.auction); got != tc.want {
			t.Errorf("Endpoint(%q, %q) = %q, expected %q", tc.base, tc.auction, got, tc.want)
		}
	}
}
