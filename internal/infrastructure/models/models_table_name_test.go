package models

import "testing"

func TestTableNames(t *testing.T) {
	if got := (UserRole{}).TableName(); got != "user_roles" {
		t.Fatalf("unexpected UserRole table name: %s", got)
	}
	if got := (BrandOwner{}).TableName(); got != "brand_owners" {
		t.Fatalf("unexpected BrandOwner table name: %s", got)
	}
	if got := len(All()); got != 6 {
		t.Fatalf("expected 6 models, got %d", got)
	}
}
