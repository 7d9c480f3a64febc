package db

import (
	"context"
	"strings"
	"testing"
)

func TestConnectRejectsBadDSN(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://user@localhost:notaport/auctions")
	if err == nil || !strings.Contains(err.Error(), "parse journal dsn") {
		t.Fatalf("expected a parse error, got %v", err)
	}
}
