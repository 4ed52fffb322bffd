package validation

import "testing"

func TestRequired(t *testing.T) {
	v := make(Violations)
	Required("name", "  ", v)
	Required("title", "File VAT return", v)
	if v["name"] != "required" {
		t.Fatalf("expected name violation, got %v", v)
	}
	if _, ok := v["title"]; ok {
		t.Fatalf("unexpected title violation")
	}
}

func TestOneOf(t *testing.T) {
	v := make(Violations)
	OneOf("status", "completed", []string{"new", "completed"}, v)
	OneOf("status2", "bogus", []string{"new", "completed"}, v)
	OneOf("status3", "", []string{"new"}, v) // empty allowed, defaulted later
	if !func() bool { _, ok := v["status2"]; return ok }() {
		t.Fatalf("expected violation for bogus value")
	}
	if len(v) != 1 {
		t.Fatalf("unexpected violations: %v", v)
	}
}

func TestEmail(t *testing.T) {
	v := make(Violations)
	Email("email", "j@acme.be", v)
	Email("bad", "not-an-email", v)
	if len(v) != 1 || v["bad"] != "invalid_email" {
		t.Fatalf("violations = %v", v)
	}
}
