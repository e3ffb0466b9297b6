package common

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ServerSection wraps bonfire settings in shared deployment files.
	ServerSection = "server"
	EnvPrefix     = "BONFIRE"
)

// LegacyEnv maps config keys to the unprefixed variable names older
// deployments export. BONFIRE_* names win when both are set.
var LegacyEnv = map[string][]string{
	"port":                              {"PORT"},
	"game.quest_claim_cooldown_seconds": {"QUEST_CLAIM_COOLDOWN_SECONDS"},
	"scheduler.stack_process_interval_seconds": {"STACK_PROCESS_INTERVAL_SECONDS", "GM_BATCH_INTERVAL_SECONDS"},
	"payment.network":                          {"PAYMENT_NETWORK"},
	"payment.chain_id":                         {"PAYMENT_CHAIN_ID"},
	"payment.token_address":                    {"PAYMENT_TOKEN_ADDRESS"},
	"payment.pay_to":                           {"PAYMENT_PAY_TO"},
	"payment.default_amount":                   {"PAYMENT_DEFAULT_AMOUNT"},
	"payment.facilitator_url":                  {"PAYMENT_FACILITATOR_URL"},
	"reveal.base_url":                          {"DELVE_BASE_URL"},
	"reveal.api_key":                           {"DELVE_API_KEY"},
	"ownership.registry_address":               {"ERC8004_REGISTRY_ADDRESS"},
	"completion.api_key":                       {"OPENAI_API_KEY"},
}

type LoadOptions struct {
	File     string
	Includes []string
	// Profile selects profiles.<name> inside the server settings.
	Profile string
}

// LoadServerConfig reads File, merges Includes in order, narrows to the
// server section when the file has one, overlays the profile and binds the
// environment.
func LoadServerConfig(opts LoadOptions) (*viper.Viper, error) {
	v := viper.New()
	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	for _, inc := range opts.Includes {
		v.SetConfigFile(inc)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("include %s: %w", inc, err)
		}
	}
	if sub := v.Sub(ServerSection); sub != nil {
		v = sub
	}
	if opts.Profile != "" {
		p := v.Sub("profiles." + opts.Profile)
		if p == nil {
			return nil, fmt.Errorf("profile %s not found", opts.Profile)
		}
		base := v.AllSettings()
		delete(base, "profiles")
		nv := viper.New()
		if err := nv.MergeConfigMap(mergeMaps(base, p.AllSettings())); err != nil {
			return nil, err
		}
		v = nv
	}
	if err := BindServerEnv(v); err != nil {
		return nil, err
	}
	return v, nil
}

// BindServerEnv makes BONFIRE_<KEY> override any key and wires LegacyEnv.
func BindServerEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, names := range LegacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, prefixed}, names...)...); err != nil {
			return err
		}
	}
	return nil
}

// mergeMaps recursively merges b into a.
func mergeMaps(a, b map[string]any) map[string]any {
	for k, vb := range b {
		if ma, ok := a[k].(map[string]any); ok {
			if mb, ok2 := vb.(map[string]any); ok2 {
				a[k] = mergeMaps(ma, mb)
				continue
			}
		}
		a[k] = vb
	}
	return a
}
