package variations

import "testing"

func TestNormalizeSortsAndLowercases(t *testing.T) {
	sel := Selection{
		{Category: " Size ", Value: "XL"},
		{Category: "Color", Value: " Red "},
	}

	normalized, err := Normalize(sel)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if normalized[0].Category != "color" || normalized[0].Value != "red" {
		t.Fatalf("unexpected first entry: %+v", normalized[0])
	}
	if normalized[1].Category != "size" || normalized[1].Value != "xl" {
		t.Fatalf("unexpected second entry: %+v", normalized[1])
	}
}

func TestNormalizeRejectsDuplicateCategory(t *testing.T) {
	_, err := Normalize(Selection{
		{Category: "color", Value: "red"},
		{Category: "Color", Value: "blue"},
	})
	if err == nil {
		t.Fatal("expected duplicate category error")
	}
}

func TestNormalizeRejectsEmptyEntries(t *testing.T) {
	if _, err := Normalize(Selection{{Category: "color", Value: " "}}); err == nil {
		t.Fatal("expected empty value error")
	}
	if _, err := Normalize(Selection{{Category: "", Value: "red"}}); err == nil {
		t.Fatal("expected empty category error")
	}
}

func TestHashIsOrderIndependent(t *testing.T) {
	a, err := Hash(Selection{
		{Category: "color", Value: "red"},
		{Category: "size", Value: "xl"},
	})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := Hash(Selection{
		{Category: "Size", Value: "XL"},
		{Category: "COLOR", Value: "Red"},
	})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a != b {
		t.Fatalf("hashes differ: %s vs %s", a, b)
	}

	c, err := Hash(Selection{{Category: "color", Value: "blue"}})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == c {
		t.Fatal("different selections must not collide")
	}
}

func TestEqual(t *testing.T) {
	a := Selection{
		{Category: "color", Value: "red"},
		{Category: "size", Value: "xl"},
	}
	b := Selection{
		{Category: "SIZE", Value: "xl"},
		{Category: "color", Value: "RED"},
	}

	equal, err := Equal(a, b)
	if err != nil {
		t.Fatalf("equal: %v", err)
	}
	if !equal {
		t.Fatal("expected selections to be equal")
	}

	equal, err = Equal(a, Selection{{Category: "color", Value: "red"}})
	if err != nil {
		t.Fatalf("equal: %v", err)
	}
	if equal {
		t.Fatal("expected different sizes to be unequal")
	}

	equal, err = Equal(Selection{}, Selection{})
	if err != nil {
		t.Fatalf("equal: %v", err)
	}
	if !equal {
		t.Fatal("expected empty selections to be equal")
	}
}
