package extract

import "testing"

func TestParseNameAccepts(t *testing.T) {
	cases := map[string]string{
		"Juan Pérez":               "Juan Pérez",
		"Carlos Alberto Fernández": "Carlos Alberto Fernández",
		"me llamo Juan Pérez":      "Juan Pérez",
		"mi nombre es Ana López":   "Ana López",
	}
	for in, want := range cases {
		got, err := ParseName(in)
		if err != nil {
			t.Fatalf("ParseName(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseName(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestParseNameTitleCases(t *testing.T) {
	got, err := ParseName("Juan PEREZ")
	if err != nil {
		t.Fatalf("ParseName: %v", err)
	}
	if got != "Juan Perez" {
		t.Fatalf("got %q, want Juan Perez", got)
	}
}

func TestParseNameRejects(t *testing.T) {
	cases := []string{
		"yo soy muy loco",
		"Juan",
		"Juan Pedro Luis Carlos Mario",
		"Juan P3rez",
		"juan perez",
		"J Pérez",
		"quiero turno",
	}
	for _, in := range cases {
		if got, err := ParseName(in); err == nil {
			t.Fatalf("ParseName(%q)=%q, want rejection", in, got)
		}
	}
}
