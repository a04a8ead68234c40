package requestctx

import (
	"context"
	"testing"
)

func TestLocaleFromContextRoundTrip(t *testing.T) {
	ctx := WithLocale(context.Background(), "pt-BR")
	if got := LocaleFromContext(ctx, "en-US"); got != "pt-BR" {
		t.Fatalf("LocaleFromContext = %q, want %q", got, "pt-BR")
	}
}

func TestLocaleFromContextFallback(t *testing.T) {
	if got := LocaleFromContext(context.Background(), "en-US"); got != "en-US" {
		t.Fatalf("LocaleFromContext = %q, want %q", got, "en-US")
	}
	if got := LocaleFromContext(WithLocale(context.Background(), ""), "en-US"); got != "en-US" {
		t.Fatalf("LocaleFromContext empty = %q, want %q", got, "en-US")
	}
}

func TestLocaleFromContextNil(t *testing.T) {
	//nolint:staticcheck // nil context is part of the contract.
	if got := LocaleFromContext(nil, "en-US"); got != "en-US" {
		t.Fatalf("LocaleFromContext(nil) = %q, want %q", got, "en-US")
	}
	//nolint:staticcheck
	if ctx := WithLocale(nil, "pt-BR"); LocaleFromContext(ctx, "") != "pt-BR" {
		t.Fatal("expected locale stored on nil parent")
	}
}
