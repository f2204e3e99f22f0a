// ABOUTME: Tests for quote command input parsing
// ABOUTME: Covers the description:qty:price line item format
package cli

import "testing"

func TestParseLineItems(t *testing.T) {
	items, err := parseLineItems("Boiler unit:1:400, Labour:2:50")
	if err != nil {
		t.Fatalf("parseLineItems failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Description != "Boiler unit" || items[0].Quantity != 1 || items[0].UnitPrice != 400 {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if items[1].Description != "Labour" || items[1].Quantity != 2 || items[1].UnitPrice != 50 {
		t.Errorf("unexpected second item: %+v", items[1])
	}
}

func TestParseLineItemsEmpty(t *testing.T) {
	items, err := parseLineItems("")
	if err != nil {
		t.Fatalf("empty input should parse: %v", err)
	}
	if items != nil {
		t.Errorf("expected no items, got %v", items)
	}
}

func TestParseLineItemsInvalid(t *testing.T) {
	cases := []string{
		"missing-parts",
		"desc:notanumber:10",
		"desc:1:notaprice",
	}
	for _, raw := range cases {
		if _, err := parseLineItems(raw); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}
