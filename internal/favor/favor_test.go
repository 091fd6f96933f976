package favor

import "testing"

func TestEncodeFiremarkBoundaries(t *testing.T) {
	cases := []struct {
		value uint16
		want  string
	}{
		{0, "AA"},
		{1, "AB"},
		{64, "BA"},
		{65, "BB"},
		{FiremarkMax, "__"},
	}
	for _, c := range cases {
		got := EncodeFiremark(c.value).Body()
		if got != c.want {
			t.Errorf("EncodeFiremark(%d) = %q, want %q", c.value, got, c.want)
		}
	}
}

func TestFiremarkRoundTrip(t *testing.T) {
	for _, v := range []uint16{0, 1, 63, 64, 100, 4000, FiremarkMax} {
		fm := EncodeFiremark(v)
		got, err := fm.Decode()
		if err != nil {
			t.Fatalf("Decode(%v): %v", fm, err)
		}
		if got != v {
			t.Errorf("round trip %d -> %q -> %d", v, fm.Body(), got)
		}
	}
}

func TestParseFiremark(t *testing.T) {
	fm, err := ParseFiremark("₣AB")
	if err != nil {
		t.Fatalf("ParseFiremark with prefix: %v", err)
	}
	if fm.Body() != "AB" {
		t.Errorf("body = %q, want AB", fm.Body())
	}
	fm2, err := ParseFiremark("AB")
	if err != nil {
		t.Fatalf("ParseFiremark without prefix: %v", err)
	}
	if fm2.Body() != "AB" {
		t.Errorf("body = %q, want AB", fm2.Body())
	}
	if _, err := ParseFiremark("A!"); err == nil {
		t.Error("expected error for invalid char")
	}
	if _, err := ParseFiremark("ABC"); err == nil {
		t.Error("expected error for wrong length")
	}
}

func TestEncodeCoronetBoundaries(t *testing.T) {
	heat0 := EncodeFiremark(0)
	cases := []struct {
		pace uint32
		want string
	}{
		{0, "AAAAA"},
		{1, "AAAAB"},
		{64, "AAABA"},
		{4096, "AABAA"},
		{CoronetPaceMax, "AA___"},
	}
	for _, c := range cases {
		got := EncodeCoronet(heat0, c.pace).Body()
		if got != c.want {
			t.Errorf("EncodeCoronet(0, %d) = %q, want %q", c.pace, got, c.want)
		}
	}

	heat1 := EncodeFiremark(1)
	got := EncodeCoronet(heat1, 0).Body()
	if got != "ABAAA" {
		t.Errorf("EncodeCoronet(1, 0) = %q, want ABAAA", got)
	}
}

func TestCoronetDecodeAndParent(t *testing.T) {
	heat := EncodeFiremark(5)
	cr := EncodeCoronet(heat, 300)
	gotHeat, gotPace, err := cr.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if gotHeat.Body() != heat.Body() || gotPace != 300 {
		t.Errorf("Decode = (%q, %d), want (%q, 300)", gotHeat.Body(), gotPace, heat.Body())
	}
	if cr.ParentFiremark().Body() != heat.Body() {
		t.Errorf("ParentFiremark = %q, want %q", cr.ParentFiremark().Body(), heat.Body())
	}
}

func TestParseCoronetRejectsBadInput(t *testing.T) {
	if _, err := ParseCoronet("AAAA"); err == nil {
		t.Error("expected error for short coronet")
	}
	if _, err := ParseCoronet("AAAA!"); err == nil {
		t.Error("expected error for invalid char")
	}
}

func TestIncrementSeed(t *testing.T) {
	cases := []struct{ in, want string }{
		{"AAA", "AAB"},
		{"AAZ", "AAa"},
		{"A__", "BAA"},
		{"___", "AAA"},
	}
	for _, c := range cases {
		got := IncrementSeed(c.in)
		if got != c.want {
			t.Errorf("IncrementSeed(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
