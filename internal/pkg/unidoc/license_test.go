package unidoc

import "testing"

func TestActivateWithoutKeyStaysUnlicensed(t *testing.T) {
	if err := Activate(""); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if Licensed() {
		t.Error("empty key must not enable docx support")
	}
}
