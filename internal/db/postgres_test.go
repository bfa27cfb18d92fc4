package db

import (
	"context"
	"testing"
)

func TestInitPostgresSkipsWithoutURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	Pool = nil

	InitPostgres(context.Background())
	if Pool != nil {
		t.Fatal("expected nil pool without DATABASE_URL")
	}
	Close()
}
