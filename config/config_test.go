package config

import "testing"

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("CF_ACCOUNT_ID", "acct")
	t.Setenv("CF_NAMESPACE_ID", "ns")
	t.Setenv("CF_API_TOKEN", "cf-token")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NotifyHour != 8 || cfg.NotifyMinute != 0 {
		t.Errorf("notify time = %02d:%02d, want 08:00", cfg.NotifyHour, cfg.NotifyMinute)
	}
	if cfg.OpsAddr != "127.0.0.1:8790" {
		t.Errorf("OpsAddr = %q, want loopback default", cfg.OpsAddr)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadMissingDiscordToken(t *testing.T) {
	setRequired(t)
	t.Setenv("DISCORD_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load without DISCORD_TOKEN returned no error")
	}
}

func TestLoadMissingKVCredentials(t *testing.T) {
	setRequired(t)
	t.Setenv("CF_NAMESPACE_ID", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load without CF_NAMESPACE_ID returned no error")
	}
}

func TestLoadNotifyTimeOverride(t *testing.T) {
	setRequired(t)
	t.Setenv("NOTIFY_HOUR", "21")
	t.Setenv("NOTIFY_MINUTE", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NotifyHour != 21 || cfg.NotifyMinute != 30 {
		t.Errorf("notify time = %02d:%02d, want 21:30", cfg.NotifyHour, cfg.NotifyMinute)
	}
}

func TestLoadNotifyTimeOutOfRange(t *testing.T) {
	setRequired(t)
	t.Setenv("NOTIFY_HOUR", "24")

	if _, err := Load(); err == nil {
		t.Fatal("Load with NOTIFY_HOUR=24 returned no error")
	}
}

func TestGetEnvIntBadValueFallsBack(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")
	if got := getEnvInt("SOME_INT", 7); got != 7 {
		t.Errorf("getEnvInt = %d, want fallback 7", got)
	}
}
