package classifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"turnero/internal/domain"
)

func TestExtractLabel(t *testing.T) {
	cases := []struct {
		raw  string
		want domain.Intent
		ok   bool
	}{
		{"agendar_turno", domain.IntentBook, true},
		{"  Agendar_Turno  ", domain.IntentBook, true},
		{"el mensaje corresponde a → consultar_costo", domain.IntentCost, true},
		{"**cancelar_turno**", domain.IntentCancel, true},
		{`"affirm"`, domain.IntentAffirm, true},
		{"intent: informar_nombre.", domain.IntentGiveName, true},
		{"la intencion es consultar_ubicacion", domain.IntentLocation, true},
		{"consultar_costo\nporque el usuario pregunta el precio", domain.IntentCost, true},
		{"(nlu_fallback)", domain.IntentUnknown, true},
		{"no estoy seguro", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ExtractLabel(tc.raw)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ExtractLabel(%q) = (%q, %v), want (%q, %v)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":` + content + `}}]}`))
	}))
}

func TestClassify(t *testing.T) {
	srv := chatServer(t, `"agendar_turno"`)
	defer srv.Close()

	c := NewClient(srv.URL, "test-model", "", time.Second)
	sig, err := c.Classify(context.Background(), "quiero sacar un turno")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if sig.Intent != domain.IntentBook || sig.Source != domain.SourceExternal {
		t.Fatalf("signal = %+v", sig)
	}
	if sig.Confidence != 0.9 {
		t.Fatalf("confidence = %v", sig.Confidence)
	}
}

func TestClassifyUnparseableDegradesToFallback(t *testing.T) {
	srv := chatServer(t, `"no tengo idea de que es esto"`)
	defer srv.Close()

	c := NewClient(srv.URL, "test-model", "", time.Second)
	sig, err := c.Classify(context.Background(), "???")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if sig.Intent != domain.IntentUnknown || sig.Confidence != 0.3 {
		t.Fatalf("signal = %+v", sig)
	}
}

func TestClassifyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-model", "", time.Second)
	if _, err := c.Classify(context.Background(), "hola"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDisabledClient(t *testing.T) {
	c := NewClient("", "", "", 0)
	if c.Enabled() {
		t.Fatalf("empty base url should disable the client")
	}
	if _, err := c.Classify(context.Background(), "hola"); err == nil {
		t.Fatalf("expected error from disabled client")
	}
}
