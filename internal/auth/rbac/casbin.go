package rbac

import (
	"fmt"
	"log/slog"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

const (
	RoleOwner  = "owner"
	RolePlayer = "player"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch(r.obj, p.obj) && (p.act == "*" || r.act == p.act)
`

// defaultPolicies grants players the public game surface; owners inherit
// everything players can do plus the owner-only routes.
var defaultPolicies = [][]string{
	{RolePlayer, "/game/config", "GET"},
	{RolePlayer, "/game/state", "GET"},
	{RolePlayer, "/game/feed", "GET"},
	{RolePlayer, "/game/feed/ws", "GET"},
	{RolePlayer, "/game/details", "GET"},
	{RolePlayer, "/game/list-active", "GET"},
	{RolePlayer, "/game/stack/timer/status", "GET"},
	{RolePlayer, "/game/agents/register-purchase", "POST"},
	{RolePlayer, "/game/agents/complete", "POST"},
	{RolePlayer, "/game/agents/process-stack", "POST"},
	{RolePlayer, "/game/agents/gm-react", "POST"},
	{RolePlayer, "/game/turn", "POST"},
	{RolePlayer, "/game/stack/process-all", "POST"},
	{RolePlayer, "/game/quests/claim", "POST"},
	{RolePlayer, "/game/player/restore", "POST"},
	{RolePlayer, "/game/purchased-agents/*", "POST"},
	{RolePlayer, "/game/map", "GET"},
	{RolePlayer, "/game/map/init", "POST"},
	{RolePlayer, "/game/room/chat", "GET"},
	{RolePlayer, "/game/room/npcs", "GET"},
	{RolePlayer, "/game/room/move", "POST"},
	{RolePlayer, "/game/inventory", "GET"},
	{RolePlayer, "/game/inventory/use", "POST"},
	{RolePlayer, "/game/npc/interact", "POST"},
	{RolePlayer, "/game/agents/end-turn", "POST"},

	{RoleOwner, "/game/create", "POST"},
	{RoleOwner, "/game/world/generate-episode", "POST"},
	{RoleOwner, "/game/quests/create", "POST"},
	{RoleOwner, "/game/agents/recharge", "POST"},
	{RoleOwner, "/game/room/create", "POST"},
	{RoleOwner, "/game/npc/create", "POST"},
	{RoleOwner, "/game/object/create", "POST"},
	{RoleOwner, "/game/object/grant", "POST"},
}

// Enforcer decides which role may call which route.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer builds the enforcer from the built-in model and policy.
// policyPath, when non-empty, names a casbin CSV file whose rules are
// loaded on top of the defaults.
func NewEnforcer(policyPath string) (*Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("rbac model: %w", err)
	}
	var e *casbin.SyncedEnforcer
	if policyPath != "" {
		e, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(policyPath))
	} else {
		e, err = casbin.NewSyncedEnforcer(m)
	}
	if err != nil {
		return nil, fmt.Errorf("rbac enforcer: %w", err)
	}
	e.EnableAutoSave(false)
	if _, err := e.AddPolicies(defaultPolicies); err != nil {
		return nil, err
	}
	if _, err := e.AddGroupingPolicy(RoleOwner, RolePlayer); err != nil {
		return nil, err
	}
	slog.Debug("rbac enforcer ready", "policy_file", policyPath)
	return &Enforcer{enforcer: e}, nil
}

// Allowed reports whether role may call method on path.
func (p *Enforcer) Allowed(role, path, method string) bool {
	ok, err := p.enforcer.Enforce(role, path, method)
	if err != nil {
		slog.Warn("rbac enforce failed", "role", role, "path", path, "error", err)
		return false
	}
	return ok
}

// RequiresOwner reports whether a player is denied but an owner allowed.
func (p *Enforcer) RequiresOwner(path, method string) bool {
	return !p.Allowed(RolePlayer, path, method) && p.Allowed(RoleOwner, path, method)
}

// Grant adds a rule at runtime.
func (p *Enforcer) Grant(role, path, method string) error {
	_, err := p.enforcer.AddPolicy(role, path, method)
	return err
}
