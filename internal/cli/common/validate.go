package common

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/cuihairu/bonfire/internal/auth/rbac"
	"github.com/cuihairu/bonfire/internal/catalog"
	"github.com/cuihairu/bonfire/internal/db"
	"github.com/cuihairu/bonfire/internal/objstore"
)

const minStackIntervalSeconds = 5

func fileExists(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}
	return nil
}

func ValidateAddr(addr string) error {
	if addr == "" {
		return fmt.Errorf("empty address")
	}
	if _, err := net.ResolveTCPAddr("tcp", addr); err != nil {
		return err
	}
	return nil
}

// ValidateServerConfig checks a bonfire server config. Strict mode also
// requires the credentials each enabled integration needs.
func ValidateServerConfig(v *viper.Viper, strict bool) error {
	if sub := v.Sub(ServerSection); sub != nil {
		v = sub
	}
	host := v.GetString("host")
	if host == "" {
		host = "0.0.0.0"
	}
	if err := ValidateAddr(net.JoinHostPort(host, strconv.Itoa(v.GetInt("port")))); err != nil {
		return fmt.Errorf("host/port: %w", err)
	}
	if v.GetInt("port") <= 0 {
		return fmt.Errorf("port must be positive")
	}

	if v.IsSet("scheduler.stack_process_interval_seconds") {
		if n := v.GetInt("scheduler.stack_process_interval_seconds"); n < minStackIntervalSeconds {
			return fmt.Errorf("scheduler.stack_process_interval_seconds: %d is below %d", n, minStackIntervalSeconds)
		}
	}
	for _, k := range []string{"game.default_quota", "game.default_recharge", "game.quest_reward", "game.quest_claim_cooldown_seconds"} {
		if v.GetInt(k) < 0 {
			return fmt.Errorf("%s must not be negative", k)
		}
	}

	if p := v.GetString("game.catalog_path"); p != "" {
		if _, err := catalog.Load(filepath.Clean(p)); err != nil {
			return fmt.Errorf("game.catalog_path: %w", err)
		}
	}
	if p := v.GetString("game.tuning_file"); p != "" {
		if err := fileExists(filepath.Clean(p)); err != nil {
			return fmt.Errorf("game.tuning_file: %w", err)
		}
	}
	if p := v.GetString("rbac.policy_file"); p != "" {
		if _, err := rbac.NewEnforcer(p); err != nil {
			return fmt.Errorf("rbac.policy_file: %w", err)
		}
	}

	switch q := strings.ToLower(v.GetString("feed.queue")); q {
	case "", "noop":
	case "redis":
		if v.GetString("feed.redis_url") == "" {
			return fmt.Errorf("feed.redis_url required for redis queue")
		}
	case "kafka":
		if len(v.GetStringSlice("feed.kafka_brokers")) == 0 {
			return fmt.Errorf("feed.kafka_brokers required for kafka queue")
		}
	default:
		return fmt.Errorf("feed.queue: unknown type %q", q)
	}

	if v.GetBool("archive.enabled") {
		dsn := v.GetString("archive.dsn")
		if strict && dsn == "" {
			return fmt.Errorf("archive.dsn missing")
		}
		if d := db.Driver(dsn); d != "sqlite" && d != "postgres" {
			return fmt.Errorf("archive.dsn: unsupported driver %s", d)
		}
		sc := objstore.Config{
			Driver:    v.GetString("archive.store.driver"),
			Bucket:    v.GetString("archive.store.bucket"),
			Region:    v.GetString("archive.store.region"),
			Endpoint:  v.GetString("archive.store.endpoint"),
			AccessKey: v.GetString("archive.store.access_key"),
			SecretKey: v.GetString("archive.store.secret_key"),
			BaseDir:   v.GetString("archive.store.base_dir"),
		}
		if sc.Driver == "" {
			sc.Driver = "file"
		}
		if sc.Driver == "file" && sc.BaseDir == "" {
			sc.BaseDir = "data/archive"
		}
		if err := objstore.Validate(sc); err != nil {
			return fmt.Errorf("archive.store: %w", err)
		}
	}

	switch m := v.GetString("ownership.mode"); m {
	case "", "first-claim":
	case "registry":
		if v.GetString("ownership.registry_url") == "" {
			return fmt.Errorf("ownership.registry_url required for registry mode")
		}
	default:
		return fmt.Errorf("ownership.mode: unknown mode %q", m)
	}

	if v.GetBool("payment.required") && v.GetString("payment.pay_to") == "" {
		return fmt.Errorf("payment.pay_to required when payment.required is set")
	}
	if strict && v.GetBool("reveal.verify_purchases") && v.GetString("reveal.api_key") == "" {
		return fmt.Errorf("reveal.api_key required when reveal.verify_purchases is set")
	}
	return nil
}
