package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/blueprint/pkg/cache"
)

func TestCacheClearCommand(t *testing.T) {
	cfgPath, dir := writeConfig(t)

	fc, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, key := range []string{"report:a", "report:b", "artifact:c"} {
		if err := fc.Set(ctx, key, []byte("{}"), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	if err := execute(t, cfgPath, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	for _, key := range []string{"report:a", "report:b", "artifact:c"} {
		if _, hit, _ := fc.Get(ctx, key); hit {
			t.Errorf("Get(%q) hit after clear", key)
		}
	}
}

func TestCacheClearMissingDir(t *testing.T) {
	cfgPath, dir := writeConfig(t)
	if err := os.RemoveAll(filepath.Join(dir, "cache")); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, cfgPath, "cache", "clear"); err != nil {
		t.Errorf("cache clear on empty cache: %v", err)
	}
}
