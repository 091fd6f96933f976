package notch

import "testing"

func TestFormatEmptyIdentity(t *testing.T) {
	got := Format(Message{Brand: "jjb", Hallmark: "1011", Identity: "", Action: 'n', Subject: "Fix"})
	want := "jjb:1011::n: Fix"
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestFormatWithBody(t *testing.T) {
	got := Format(Message{Brand: "jjb", Hallmark: "1011", Identity: "₢AWAAb", Action: 'W', Subject: "complete", Body: "All tests passing"})
	want := "jjb:1011:₢AWAAb:W: complete\n\nAll tests passing"
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestParseRoundTrip(t *testing.T) {
	msgs := []Message{
		{Brand: "jjb", Hallmark: "1011", Identity: "₢AWAAb", Action: 'W', Subject: "complete", Body: "All tests passing"},
		{Brand: "jjb", Hallmark: "1011", Identity: "", Action: 'n', Subject: "Fix"},
		{Brand: "jjb", Hallmark: "0004-abc1234", Identity: "₣AB", Action: 'N', Subject: "ship-it"},
	}
	for _, m := range msgs {
		raw := Format(m)
		got, err := Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q): %v", raw, err)
		}
		if got != m {
			t.Errorf("Parse(Format(%+v)) = %+v", m, got)
		}
	}
}

func TestParseLegacyNoHallmarkForm(t *testing.T) {
	got, err := Parse("jjb:₣AB:N: ship-it")
	if err != nil {
		t.Fatalf("Parse legacy form: %v", err)
	}
	if got.Brand != "jjb" || got.Hallmark != "" || got.Identity != "₣AB" || got.Action != 'N' || got.Subject != "ship-it" {
		t.Errorf("unexpected parse result: %+v", got)
	}
}

func TestActionRegistryCodesAreUnique(t *testing.T) {
	seen := make(map[byte]bool)
	for _, a := range registry {
		if seen[a.Code] {
			t.Fatalf("duplicate code %q", a.Code)
		}
		seen[a.Code] = true
	}
}
