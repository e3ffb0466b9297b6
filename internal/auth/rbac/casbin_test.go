package rbac

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPolicy(t *testing.T) {
	e, err := NewEnforcer("")
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		role, path, method string
		want               bool
	}{
		{RolePlayer, "/game/turn", "POST", true},
		{RolePlayer, "/game/agents/register-purchase", "POST", true},
		{RolePlayer, "/game/agents/recharge", "POST", false},
		{RolePlayer, "/game/create", "POST", false},
		{RolePlayer, "/game/quests/create", "POST", false},
		{RolePlayer, "/game/state", "POST", false},
		{RoleOwner, "/game/create", "POST", true},
		{RoleOwner, "/game/turn", "POST", true},
		{"stranger", "/game/state", "GET", false},
		{RolePlayer, "/game/room/move", "POST", true},
		{RolePlayer, "/game/npc/interact", "POST", true},
		{RolePlayer, "/game/map", "GET", true},
		{RolePlayer, "/game/map/init", "GET", false},
		{RolePlayer, "/game/room/create", "POST", false},
		{RolePlayer, "/game/object/grant", "POST", false},
		{RoleOwner, "/game/npc/create", "POST", true},
	}
	for _, c := range cases {
		if got := e.Allowed(c.role, c.path, c.method); got != c.want {
			t.Errorf("Allowed(%s, %s %s) = %v, want %v", c.role, c.method, c.path, got, c.want)
		}
	}
	if !e.RequiresOwner("/game/create", "POST") {
		t.Errorf("create should require owner")
	}
	if e.RequiresOwner("/game/turn", "POST") {
		t.Errorf("turn should not require owner")
	}
}

func TestPolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.csv")
	if err := os.WriteFile(path, []byte("p, player, /game/debug, GET\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	e, err := NewEnforcer(path)
	if err != nil {
		t.Fatal(err)
	}
	if !e.Allowed(RolePlayer, "/game/debug", "GET") {
		t.Fatalf("file rule not loaded")
	}
	if !e.Allowed(RoleOwner, "/game/debug", "GET") {
		t.Fatalf("owner should inherit player rules")
	}
}
