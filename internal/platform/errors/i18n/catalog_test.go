package i18n

import "testing"

func TestGetCatalogFallback(t *testing.T) {
	base := GetCatalog("en-US")
	if base == nil {
		t.Fatal("expected base catalog")
	}
	if fallback := GetCatalog("missing-locale"); fallback != base {
		t.Fatal("expected fallback to en-US catalog")
	}
	if empty := GetCatalog(""); empty != base {
		t.Fatal("expected blank locale to use en-US catalog")
	}
}

func TestPartialLocaleMergesBase(t *testing.T) {
	cat := GetCatalog("pt-BR")
	if got := cat.Format("LAYOUT_NOT_FOUND", nil); got != "Layout não encontrado" {
		t.Fatalf("pt-BR LAYOUT_NOT_FOUND = %q", got)
	}
	if got := cat.Format("LAYOUT_STORE_UNAVAILABLE", nil); got != "Layouts are temporarily unavailable" {
		t.Fatalf("pt-BR fallback = %q", got)
	}
}

func TestGetCatalogMatchesLanguage(t *testing.T) {
	cat := GetCatalog("pt")
	if cat.Locale() != "pt-BR" {
		t.Fatalf("locale = %q, want pt-BR", cat.Locale())
	}
	if cat != GetCatalog("pt-BR") {
		t.Fatal("expected pt to share the pt-BR catalog")
	}
}

func TestPanelNotInStageMessage(t *testing.T) {
	cat := GetCatalog("en-US")
	if !cat.Has("PANEL_NOT_IN_STAGE") {
		t.Fatal("expected PANEL_NOT_IN_STAGE template")
	}
	got := cat.Format("PANEL_NOT_IN_STAGE", map[string]string{"Panel": "battle-map", "Stage": "prep"})
	if got != "Panel battle-map is not available during prep" {
		t.Fatalf("message = %q", got)
	}
}

func TestFormatFallbacks(t *testing.T) {
	cat := NewCatalog("test", map[string]string{
		"code": "hello {{.Name}}",
	})
	if cat.Format("unknown", nil) != "unknown" {
		t.Fatal("expected code fallback when template missing")
	}
	if got := cat.Format("code", nil); got != "hello <no value>" {
		t.Fatalf("missing metadata = %q, want %q", got, "hello <no value>")
	}
	if got := cat.Format("code", map[string]string{"Name": "Ada"}); got != "hello Ada" {
		t.Fatalf("Format = %q", got)
	}
}

func TestFormatTemplateErrorFallback(t *testing.T) {
	cat := NewCatalog("test", map[string]string{
		"code": "{{ if .Name }}",
	})
	if cat.Format("code", map[string]string{"Name": "X"}) != "{{ if .Name }}" {
		t.Fatal("expected template fallback on parse error")
	}
}

func TestRegisterCatalog(t *testing.T) {
	custom := NewCatalog("custom", map[string]string{"code": "ok"})
	RegisterCatalog("custom", custom)
	if got := GetCatalog("custom"); got != custom {
		t.Fatal("expected registered catalog")
	}
}
