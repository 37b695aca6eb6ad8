package server

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/courtroom.space/internal/services/scene/authz"
)

func setServerEnv(t *testing.T, store, dbPath string) {
	t.Helper()
	t.Setenv("COURTROOM_SPACE_SCENE_STORE", store)
	t.Setenv("COURTROOM_SPACE_SCENE_DB_PATH", dbPath)
	t.Setenv("COURTROOM_SPACE_SCENE_REDIS_ADDR", "")
	t.Setenv("COURTROOM_SPACE_SCENE_ROSTER_PATH", "")
	t.Setenv(authz.EnvWriterPublicKey, "")
	t.Setenv(authz.EnvWriterIssuer, "")
	t.Setenv(authz.EnvWriterAudience, "")
}

func startServer(t *testing.T) *Server {
	t.Helper()

	srv, err := NewWithAddr(context.Background(), "127.0.0.1:0")
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- srv.Serve(runCtx)
	}()
	t.Cleanup(func() {
		runCancel()
		select {
		case serveErr := <-serveDone:
			if serveErr != nil {
				t.Fatalf("serve: %v", serveErr)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for server shutdown")
		}
	})
	return srv
}

func TestServer_CreateAndGetSceneRoundTrip(t *testing.T) {
	for _, store := range []string{StoreSQLite, StoreBbolt} {
		t.Run(store, func(t *testing.T) {
			setServerEnv(t, store, filepath.Join(t.TempDir(), "nested", "scenes.db"))
			srv := startServer(t)
			base := "http://" + srv.Addr()

			body := `{"name":"Sunfall","scene":{"groups":[{"iid":1,"name":"Opening","frames":[{"iid":1,"poseId":1,"characterId":1,"text":"Hold it!"}]}]}}`
			resp, err := http.Post(base+"/v1/scenes", "application/json", strings.NewReader(body))
			if err != nil {
				t.Fatalf("create scene: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusCreated {
				t.Fatalf("create status = %d", resp.StatusCode)
			}
			var created struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
				t.Fatalf("decode create: %v", err)
			}

			getResp, err := http.Get(base + "/v1/scenes/" + created.ID)
			if err != nil {
				t.Fatalf("get scene: %v", err)
			}
			defer getResp.Body.Close()
			var fetched struct {
				Name       string `json:"name"`
				FrameCount int    `json:"frame_count"`
			}
			if err := json.NewDecoder(getResp.Body).Decode(&fetched); err != nil {
				t.Fatalf("decode get: %v", err)
			}
			if fetched.Name != "Sunfall" || fetched.FrameCount != 1 {
				t.Fatalf("fetched = %+v", fetched)
			}
		})
	}
}

func TestServerServeNil(t *testing.T) {
	var srv *Server
	if err := srv.Serve(context.Background()); err == nil {
		t.Fatal("expected error for nil server")
	}
	if srv.Addr() != "" {
		t.Fatal("expected empty addr for nil server")
	}
}

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("COURTROOM_SPACE_SCENE_STORE", "")
	t.Setenv("COURTROOM_SPACE_SCENE_DB_PATH", "")
	cfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("load env: %v", err)
	}
	if cfg.Store != StoreSQLite || cfg.DBPath != filepath.Join("data", "scenes.db") {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Fatalf("cache ttl = %v, want 10m", cfg.CacheTTL)
	}

	t.Setenv("COURTROOM_SPACE_SCENE_STORE", "BBOLT")
	cfg, err = LoadEnv()
	if err != nil {
		t.Fatalf("load env: %v", err)
	}
	if cfg.Store != StoreBbolt || cfg.DBPath != filepath.Join("data", "scenes.bolt") {
		t.Fatalf("cfg = %+v", cfg)
	}

	t.Setenv("COURTROOM_SPACE_SCENE_STORE", "postgres")
	if _, err := LoadEnv(); err == nil {
		t.Fatal("expected error for unknown store")
	}
}

func TestOpenRuntimeUsesCustomRoster(t *testing.T) {
	dir := t.TempDir()
	rosterPath := filepath.Join(dir, "roster.json")
	if err := os.WriteFile(rosterPath, []byte(`[{"name":"Apollo Justice","id":40,"pose":1}]`), 0o600); err != nil {
		t.Fatalf("write roster: %v", err)
	}

	rt, err := OpenRuntime(context.Background(), Env{
		Store:      StoreSQLite,
		DBPath:     filepath.Join(dir, "scenes.db"),
		RosterPath: rosterPath,
	})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	defer rt.Close()

	characters := rt.Service.ListCharacters()
	if len(characters) != 1 || characters[0].Name != "Apollo Justice" {
		t.Fatalf("characters = %+v", characters)
	}
}

func TestOpenRuntimeRejectsBadRoster(t *testing.T) {
	dir := t.TempDir()
	rosterPath := filepath.Join(dir, "roster.json")
	if err := os.WriteFile(rosterPath, []byte(`{}`), 0o600); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	_, err := OpenRuntime(context.Background(), Env{Store: StoreSQLite, DBPath: filepath.Join(dir, "scenes.db"), RosterPath: rosterPath})
	if err == nil {
		t.Fatal("expected roster error")
	}
	if _, err := OpenRuntime(context.Background(), Env{Store: StoreSQLite, DBPath: filepath.Join(dir, "scenes.db"), RosterPath: filepath.Join(dir, "missing.json")}); err == nil {
		t.Fatal("expected missing roster error")
	}
}

func TestServerRejectsWritesWithoutGrantWhenConfigured(t *testing.T) {
	setServerEnv(t, StoreSQLite, filepath.Join(t.TempDir(), "scenes.db"))
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	t.Setenv(authz.EnvWriterPublicKey, base64.StdEncoding.EncodeToString(pub))
	t.Setenv(authz.EnvWriterIssuer, "scenectl")
	t.Setenv(authz.EnvWriterAudience, "scene")
	srv := startServer(t)

	resp, err := http.Post("http://"+srv.Addr()+"/v1/scenes", "application/json", bytes.NewReader([]byte(`{}`)))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}
