package fuzzy

import (
	"os"
	"path/filepath"
	"testing"

	"turnero/internal/domain"
)

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.json")
	body := `{"agendar_turno":{"alta":["quiero","turno"],"media":["hora"],"baja":["che"]}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	tiers, ok := table[domain.IntentBook]
	if !ok {
		t.Fatalf("booking intent missing: %v", table)
	}
	if len(tiers.High) != 2 || tiers.High[0] != "quiero" {
		t.Fatalf("tiers = %+v", tiers)
	}
}

func TestLoadTableErrors(t *testing.T) {
	if _, err := LoadTable(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("missing file accepted")
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadTable(bad); err == nil {
		t.Fatalf("malformed table accepted")
	}

	empty := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(empty, []byte("{}"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadTable(empty); err == nil {
		t.Fatalf("empty table accepted")
	}
}

func TestReplacedTableTakesEffect(t *testing.T) {
	e := NewEngine(Table{
		domain.IntentGreet: {High: []string{"hola"}},
	}, nil)
	if sig := e.Score("hola"); sig.Intent != domain.IntentGreet {
		t.Fatalf("signal = %+v", sig)
	}

	e.setTable(Table{
		domain.IntentGoodbye: {High: []string{"hola"}},
	})
	if sig := e.Score("hola"); sig.Intent != domain.IntentGoodbye {
		t.Fatalf("signal after swap = %+v", sig)
	}
}
