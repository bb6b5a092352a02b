package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	sqliteadapter "github.com/atvirokodosprendimai/pcforge/internal/adapters/db/sqlite"
	"github.com/atvirokodosprendimai/pcforge/internal/application"
	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func runWith(t *testing.T, flags []cli.Flag, args []string, fn func(c *cli.Command) error) error {
	t.Helper()
	cmd := &cli.Command{
		Name:  "test",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			return fn(c)
		},
	}
	return cmd.Run(context.Background(), append([]string{"test"}, args...))
}

func TestArgIDRejectsNonPositive(t *testing.T) {
	for _, raw := range []string{"0", "abc"} {
		err := runWith(t, nil, []string{raw}, func(c *cli.Command) error {
			_, err := argID(c, 0, "Part ID")
			return err
		})
		require.ErrorIs(t, err, errUsage, raw)
		assert.Contains(t, err.Error(), "Part ID must be a positive number")
	}

	var got int64
	err := runWith(t, nil, []string{"42"}, func(c *cli.Command) error {
		var err error
		got, err = argID(c, 0, "Part ID")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), got)
}

func TestParseCategory(t *testing.T) {
	cat, err := parseCategory(" gpu ")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryGPU, cat)

	_, err = parseCategory("monitor")
	require.ErrorIs(t, err, errUsage)
}

func TestConfirmSkippedWithYes(t *testing.T) {
	err := runWith(t, []cli.Flag{yesFlag()}, []string{"--yes"}, func(c *cli.Command) error {
		return confirm(c, "Delete part", "sure?")
	})
	require.NoError(t, err)
}

func TestConfirmDialogKeys(t *testing.T) {
	press := func(d confirmDialog, key tea.KeyMsg) confirmDialog {
		next, _ := d.Update(key)
		return next.(confirmDialog)
	}
	runes := func(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

	d := confirmDialog{title: "Delete", message: "sure?"}
	d = press(d, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, d.confirmed, "No is preselected")

	d = press(d, tea.KeyMsg{Type: tea.KeyLeft})
	assert.True(t, d.yesSelected)
	d = press(d, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, d.confirmed)

	d = press(confirmDialog{}, runes("y"))
	assert.True(t, d.confirmed)
	d = press(d, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, d.confirmed)

	assert.Contains(t, confirmDialog{title: "Delete", message: "sure?"}.View(), "sure?")
}

func TestApplySpecFlags(t *testing.T) {
	editor := application.NewSpecEditor(domain.CategoryCPU, nil, 0, nil)
	defer editor.Close()
	editor.Clear()

	spec, err := applySpecFlags(editor, []string{"socket=AM5", "cores=8", "socket=LGA1700"}, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"socket":"LGA1700","cores":8}`, spec)

	spec, err = applySpecFlags(editor, nil, []string{"socket"})
	require.NoError(t, err)
	assert.Equal(t, `{"cores":8}`, spec)

	_, err = applySpecFlags(editor, []string{"novalue"}, nil)
	require.ErrorIs(t, err, errUsage)
}

// adminBackend answers as a signed-in admin and records every mutating call.
func adminBackend(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	var (
		mu        sync.Mutex
		mutations []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/auth/me":
			_, _ = w.Write([]byte(`{"success":true,"data":{"id":1,"email":"root@example.com","fullName":"Root","role":"ADMIN"}}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/parts":
			_, _ = w.Write([]byte(`{"success":true,"data":{"content":[{"id":4,"name":"Ryzen 5 7600","category":"CPU","price":5000000}],"totalPages":1,"totalElements":1,"number":0,"size":1000}}`))
		default:
			mu.Lock()
			mutations = append(mutations, r.Method+" "+r.URL.Path)
			mu.Unlock()
			_, _ = w.Write([]byte(`{"success":true,"data":null}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), mutations...)
	}
}

func TestSensitiveCommandsNeedConfirmation(t *testing.T) {
	orig := interactive
	interactive = func() bool { return false }
	t.Cleanup(func() { interactive = orig })

	for _, tc := range []struct {
		command []string
		args    []string
	}{
		{command: []string{"auth", "logout"}},
		{command: []string{"admin", "role"}, args: []string{"2", "ADMIN"}},
		{command: []string{"parts", "crawl-all"}},
	} {
		t.Run(strings.Join(tc.command, " "), func(t *testing.T) {
			srv, mutations := adminBackend(t)
			dbPath := filepath.Join(t.TempDir(), "pcforge.db")
			db, store, err := openStore(context.Background(), dbPath)
			require.NoError(t, err)
			require.NoError(t, store.SetToken(context.Background(), "admin-token"))
			sqlDB, err := db.DB()
			require.NoError(t, err)
			require.NoError(t, sqlDB.Close())

			global := []string{"pcforge", "--api-url", srv.URL, "--transport", "http", "--db-path", dbPath}
			run := func(extra ...string) error {
				argv := append(append(append(append([]string{}, global...), tc.command...), extra...), tc.args...)
				return rootCommand().Run(context.Background(), argv)
			}

			err = run()
			require.ErrorIs(t, err, errUsage)
			assert.Contains(t, err.Error(), "pass --yes")
			assert.Empty(t, mutations())

			db, err = sqliteadapter.Open(dbPath)
			require.NoError(t, err)
			token, err := sqliteadapter.NewLocalStore(db).Token(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "admin-token", token)
			sqlDB, err = db.DB()
			require.NoError(t, err)
			require.NoError(t, sqlDB.Close())

			err = run("--yes")
			require.NoError(t, err)
			assert.NotEmpty(t, mutations())
		})
	}
}
