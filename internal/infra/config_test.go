package infra

import "testing"

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when DATABASE_URL is unset")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("PORT", "")
	t.Setenv("CURRENCY", "")
	t.Setenv("GOAL_AMOUNT", "")
	t.Setenv("STRIPE_SECRET_KEY", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port mismatch: got %q want %q", cfg.Port, "8080")
	}
	if cfg.Currency != "usd" {
		t.Fatalf("Currency mismatch: got %q want %q", cfg.Currency, "usd")
	}
	if cfg.GoalAmount != 500000 {
		t.Fatalf("GoalAmount mismatch: got %d want 500000", cfg.GoalAmount)
	}
	if cfg.StripeSecretKey != "" {
		t.Fatalf("StripeSecretKey should be empty, got %q", cfg.StripeSecretKey)
	}
	if cfg.StripeBaseURL != "https://api.stripe.com" {
		t.Fatalf("StripeBaseURL mismatch: got %q", cfg.StripeBaseURL)
	}
}

func TestLoadConfigNormalizesCurrency(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("CURRENCY", "EUR")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Currency != "eur" {
		t.Fatalf("Currency mismatch: got %q want %q", cfg.Currency, "eur")
	}
}

func TestLoadConfigRejectsNonPositiveGoal(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("GOAL_AMOUNT", "-5")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for negative GOAL_AMOUNT")
	}
}

func TestLoadConfigSplitsCORSOrigins(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://uploadcaffeine.dev, http://localhost:3000 ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	expected := []string{"https://uploadcaffeine.dev", "http://localhost:3000"}
	if len(cfg.CORSAllowedOrigins) != len(expected) {
		t.Fatalf("CORSAllowedOrigins mismatch: %#v", cfg.CORSAllowedOrigins)
	}
	for i, origin := range expected {
		if cfg.CORSAllowedOrigins[i] != origin {
			t.Fatalf("CORSAllowedOrigins[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], origin)
		}
	}
}
