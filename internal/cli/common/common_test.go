package common

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestValidateServerConfig(t *testing.T) {
	base := func() *viper.Viper {
		v := viper.New()
		v.Set("host", "127.0.0.1")
		v.Set("port", 8080)
		v.Set("scheduler.stack_process_interval_seconds", 120)
		return v
	}
	if err := ValidateServerConfig(base(), false); err != nil {
		t.Fatalf("base config: %v", err)
	}

	cases := map[string]func(v *viper.Viper){
		"interval too small": func(v *viper.Viper) { v.Set("scheduler.stack_process_interval_seconds", 2) },
		"unknown queue":      func(v *viper.Viper) { v.Set("feed.queue", "rabbit") },
		"redis without url":  func(v *viper.Viper) { v.Set("feed.queue", "redis") },
		"unknown ownership":  func(v *viper.Viper) { v.Set("ownership.mode", "vote") },
		"registry no url":    func(v *viper.Viper) { v.Set("ownership.mode", "registry") },
		"payment no pay_to":  func(v *viper.Viper) { v.Set("payment.required", true) },
		"missing catalog":    func(v *viper.Viper) { v.Set("game.catalog_path", "/nonexistent/quests.yaml") },
		"negative quota":     func(v *viper.Viper) { v.Set("game.default_quota", -1) },
		"oss without bucket": func(v *viper.Viper) {
			v.Set("archive.enabled", true)
			v.Set("archive.store.driver", "oss")
		},
	}
	for name, mutate := range cases {
		v := base()
		mutate(v)
		if err := ValidateServerConfig(v, false); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestValidateArchiveFileStore(t *testing.T) {
	v := viper.New()
	v.Set("port", 8080)
	v.Set("archive.enabled", true)
	v.Set("archive.dsn", "file:archive.db")
	v.Set("archive.store.base_dir", filepath.Join(t.TempDir(), "archive"))
	if err := ValidateServerConfig(v, true); err != nil {
		t.Fatal(err)
	}
	v.Set("archive.dsn", "")
	if err := ValidateServerConfig(v, true); err == nil {
		t.Fatal("strict mode should require archive.dsn")
	}
}

func TestLoadServerConfig(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.yaml")
	inc := filepath.Join(dir, "inc.yaml")
	write := func(p, s string) {
		if err := os.WriteFile(p, []byte(s), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	write(base, "server:\n  port: 8080\n  game:\n    default_quota: 5\n  profiles:\n    prod:\n      game:\n        default_quota: 9\n")
	write(inc, "server:\n  feed:\n    queue: redis\n")

	v, err := LoadServerConfig(LoadOptions{File: base, Includes: []string{inc}})
	if err != nil {
		t.Fatal(err)
	}
	if v.GetString("feed.queue") != "redis" || v.GetInt("game.default_quota") != 5 {
		t.Fatalf("include not merged: queue=%q quota=%d", v.GetString("feed.queue"), v.GetInt("game.default_quota"))
	}

	pv, err := LoadServerConfig(LoadOptions{File: base, Includes: []string{inc}, Profile: "prod"})
	if err != nil {
		t.Fatal(err)
	}
	if pv.GetInt("game.default_quota") != 9 || pv.GetInt("port") != 8080 || pv.GetString("feed.queue") != "redis" {
		t.Fatalf("profile overlay: quota=%d port=%d", pv.GetInt("game.default_quota"), pv.GetInt("port"))
	}
	if pv.IsSet("profiles") {
		t.Fatal("profiles left in overlaid settings")
	}
	if _, err := LoadServerConfig(LoadOptions{File: base, Profile: "staging"}); err == nil {
		t.Fatal("expected missing profile error")
	}
}

func TestBindServerEnvLegacyNames(t *testing.T) {
	t.Setenv("GM_BATCH_INTERVAL_SECONDS", "45")
	t.Setenv("BONFIRE_FEED_QUEUE", "kafka")
	v, err := LoadServerConfig(LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if v.GetInt("scheduler.stack_process_interval_seconds") != 45 || v.GetString("feed.queue") != "kafka" {
		t.Fatalf("env not bound: interval=%d queue=%q", v.GetInt("scheduler.stack_process_interval_seconds"), v.GetString("feed.queue"))
	}
}

func TestLogCounters(t *testing.T) {
	SetupLoggerWithFile("debug", "json", filepath.Join(t.TempDir(), "bonfire.log"), 1, 1, 1, false)
	t.Cleanup(func() { slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil))) })
	before := GetLogCounters()
	slog.Warn("feed backlog full")
	slog.Error("archive export failed")
	after := GetLogCounters()
	if after["warn"]-before["warn"] != 1 || after["error"]-before["error"] != 1 {
		t.Fatalf("counters before=%v after=%v", before, after)
	}
	if after["total"] != after["debug"]+after["info"]+after["warn"]+after["error"] {
		t.Fatalf("total mismatch: %v", after)
	}
}
