package onchain

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cuihairu/bonfire/internal/game"
)

func TestFirstClaimVerifier(t *testing.T) {
	v := NewFirstClaimVerifier()
	ctx := context.Background()
	if ok, _ := v.IsOwner(ctx, "0xdef", "bf1"); ok {
		t.Fatalf("unclaimed bonfire must have no owner")
	}
	if ok, _ := v.IsOwner(ctx, "0xABC", "bf1"); ok {
		t.Fatalf("asking must not claim")
	}
	if ok, _ := v.Claim(ctx, "0xABC", "bf1"); !ok {
		t.Fatalf("first claim should win")
	}
	if ok, _ := v.Claim(ctx, "0xdef", "bf1"); ok {
		t.Fatalf("second claim must lose")
	}
	if ok, _ := v.IsOwner(ctx, "0xabc ", "bf1"); !ok {
		t.Fatalf("owner should be matched case-insensitively")
	}
	if ok, _ := v.IsOwner(ctx, "0xdef", "bf1"); ok {
		t.Fatalf("second wallet must not own bf1")
	}
	if ok, _ := v.Claim(ctx, "", "bf2"); ok {
		t.Fatalf("empty wallet must not claim")
	}
}

func TestRegistryVerifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bonfires/bf1/owner":
			if r.URL.Query().Get("registry") != "0xreg" {
				t.Errorf("registry query missing: %s", r.URL.RawQuery)
			}
			w.Write([]byte(`{"owner_wallet":"0xOWNER"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	v := NewRegistryVerifier(RegistryConfig{BaseURL: srv.URL + "/", RegistryAddress: "0xreg"})
	ctx := context.Background()
	ok, err := v.IsOwner(ctx, "0xowner", "bf1")
	if err != nil || !ok {
		t.Fatalf("IsOwner = %v, %v", ok, err)
	}
	ok, err = v.IsOwner(ctx, "0xother", "bf1")
	if err != nil || ok {
		t.Fatalf("IsOwner other = %v, %v", ok, err)
	}
	if _, err := v.IsOwner(ctx, "0xowner", "missing"); !errors.Is(err, game.ErrNotFound) {
		t.Fatalf("missing bonfire err = %v", err)
	}
}

func TestDoJSONMapsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
		case "/boom":
			w.WriteHeader(http.StatusBadGateway)
		case "/garbage":
			w.Write([]byte("not json"))
		}
	}))
	defer srv.Close()
	hc := srv.Client()
	ctx := context.Background()
	if _, err := doJSON(ctx, hc, http.MethodGet, srv.URL+"/forbidden", "", nil); !errors.Is(err, game.ErrForbidden) {
		t.Fatalf("forbidden err = %v", err)
	}
	if _, err := doJSON(ctx, hc, http.MethodGet, srv.URL+"/boom", "", nil); !errors.Is(err, ErrUpstream) {
		t.Fatalf("boom err = %v", err)
	}
	if _, err := doJSON(ctx, hc, http.MethodGet, srv.URL+"/garbage", "", nil); !errors.Is(err, ErrUpstream) {
		t.Fatalf("garbage err = %v", err)
	}
}
