package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault_PickIsStable(t *testing.T) {
	c := Default()
	a := c.Pick("the sunken keep", 3)
	b := c.Pick("the sunken keep", 3)
	if len(a) != 3 {
		t.Fatalf("len = %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("pick not stable: %+v vs %+v", a[i], b[i])
		}
		if !strings.Contains(a[i].Description, "the sunken keep") {
			t.Fatalf("prompt not substituted: %q", a[i].Description)
		}
	}
}

func TestParse_RejectsInvalid(t *testing.T) {
	if _, err := Parse([]byte("quests: []")); err == nil {
		t.Fatalf("empty quest list accepted")
	}
	if _, err := Parse([]byte("quests:\n  - description: x\n    reward: 0\n")); err == nil {
		t.Fatalf("zero reward accepted")
	}
}

func TestLoad_File(t *testing.T) {
	p := filepath.Join(t.TempDir(), "q.yaml")
	if err := os.WriteFile(p, []byte("quests:\n  - description: Guard {prompt}\n    keyword: guard\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := c.Pick("the gate", 2)
	if len(got) != 2 || got[0].Description != "Guard the gate" || got[1].Keyword != "guard" {
		t.Fatalf("pick = %+v", got)
	}
}
