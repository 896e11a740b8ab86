package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrylevesque/navshell/internal/models"
)

const menuYAML = `
categories:
  - name: Work
    apps:
      - path: /work
        title: Work Manager
      - path: /taas
        title: Talent as a Service
  - name: Earn
    apps:
      - path: /earn/find/challenges
        title: Challenges
disabled_routes:
  - checkout/*
`

func TestParseMenu(t *testing.T) {
	m, err := ParseMenu([]byte(menuYAML))
	require.NoError(t, err)
	require.Len(t, m.Categories, 2)
	assert.Equal(t, "Talent as a Service", m.Categories[0].Apps[1].Title)
	assert.Equal(t, []string{"checkout/*"}, m.DisabledRoutes)

	// JSON is accepted as well.
	m, err = ParseMenu([]byte(`{"categories":[{"apps":[{"path":"/a","title":"A"}]}]}`))
	require.NoError(t, err)
	assert.Equal(t, "/a", m.Categories[0].Apps[0].Path)
}

func TestParseMenuRejectsEmptyPath(t *testing.T) {
	_, err := ParseMenu([]byte("categories:\n  - apps:\n      - title: nameless\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "categories[0].apps[0].path")
}

func TestFileMenuSourceLoad(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "menu.yaml")
	src := NewFileMenuSource(p, nil)

	_, err := src.Load(context.Background())
	assert.ErrorIs(t, err, ErrMenuNotFound)

	require.NoError(t, os.WriteFile(p, []byte(menuYAML), 0o600))
	m, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, m.Categories, 2)
}

func TestFileMenuSourceWatch(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "menu.yaml")
	require.NoError(t, os.WriteFile(p, []byte(menuYAML), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := NewFileMenuSource(p, nil)
	updates, err := src.Watch(ctx)
	require.NoError(t, err)

	// An unrelated file in the same directory is ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1"), 0o600))
	require.NoError(t, os.WriteFile(p, []byte("categories:\n  - apps:\n      - path: /new\n        title: New\n"), 0o600))

	// A write can surface as several events, the first of which may see a
	// truncated file.
	deadline := time.After(5 * time.Second)
	for found := false; !found; {
		select {
		case m := <-updates:
			require.NotNil(t, m)
			found = len(m.Categories) == 1 && len(m.Categories[0].Apps) == 1 && m.Categories[0].Apps[0].Path == "/new"
		case <-deadline:
			t.Fatal("no menu update received")
		}
	}

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-updates:
			return !ok
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}

func newRedis(t *testing.T) redis.UniversalClient {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisMenuSource(t *testing.T) {
	client := newRedis(t)
	src := NewRedisMenuSource(client, "navshell:menu", "navshell:menu:updates", nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := src.Load(ctx)
	assert.ErrorIs(t, err, ErrMenuNotFound)

	updates, err := src.Watch(ctx)
	require.NoError(t, err)

	menu := &models.Menu{Categories: []models.MenuCategory{{Apps: []models.AppDescriptor{{Path: "/work", Title: "Work"}}}}}
	require.NoError(t, src.Publish(ctx, menu))

	select {
	case got := <-updates:
		assert.Equal(t, menu.Categories, got.Categories)
		assert.NotSame(t, menu, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no menu update received")
	}

	loaded, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Work", loaded.Categories[0].Apps[0].Title)

	// An empty notification re-reads the key.
	require.NoError(t, client.Publish(ctx, "navshell:menu:updates", "").Err())
	select {
	case got := <-updates:
		assert.Equal(t, "/work", got.Categories[0].Apps[0].Path)
	case <-time.After(5 * time.Second):
		t.Fatal("no menu update received")
	}
}

func TestRedisMenuSourcePublishValidates(t *testing.T) {
	src := NewRedisMenuSource(newRedis(t), "k", "c", nil)
	err := src.Publish(context.Background(), &models.Menu{Categories: []models.MenuCategory{{Apps: []models.AppDescriptor{{Title: "x"}}}}})
	assert.Error(t, err)
}
