package arbiter

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmuxai/aiteam/internal/tmux"
)

func genv(vals map[string]string) func(string) string {
	return func(k string) string { return vals[k] }
}

func TestEnabledPrecedence(t *testing.T) {
	cases := []struct {
		name string
		opts Options
		env  map[string]string
		want bool
	}{
		{"default off", Options{}, nil, false},
		{"enable flag", Options{EnableFlag: true}, nil, true},
		{"enable env", Options{}, map[string]string{EnvEnable: "1"}, true},
		{"enable env zero is unset", Options{}, map[string]string{EnvEnable: "0"}, false},
		{"config on", Options{ConfigOn: true}, nil, true},
		{"disable flag beats enable flag", Options{EnableFlag: true, DisableFlag: true}, nil, false},
		{"disable flag beats enable env", Options{DisableFlag: true}, map[string]string{EnvEnable: "1"}, false},
		{"disable env beats enable flag", Options{EnableFlag: true}, map[string]string{EnvDisable: "1"}, false},
		{"disable env beats config", Options{ConfigOn: true}, map[string]string{EnvDisable: "yes"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Enabled(tc.opts, genv(tc.env)))
		})
	}
}

// fakeMux records calls and serves canned pane lists.
type fakeMux struct {
	mu         sync.Mutex
	panes      []tmux.Pane
	options    map[string]string
	listErr    error
	versionErr error

	versionCalls int
	listCalls    int
	splits       []string // commands passed to SplitWindow
	titles       []string
	sent         []string
}

func (m *fakeMux) Version() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versionCalls++
	if m.versionErr != nil {
		return "", m.versionErr
	}
	return "tmux 3.4", nil
}

func (m *fakeMux) ListPanes(session string) ([]tmux.Pane, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]tmux.Pane(nil), m.panes...), nil
}

func (m *fakeMux) SplitWindow(session, workDir string, horizontal bool, command string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.splits = append(m.splits, command)
	id := "%100"
	// Simulate tmux registering the new pane so the next ListPanes sees it.
	m.panes = append(m.panes, tmux.Pane{ID: id, Index: len(m.panes), Title: ""})
	return id, nil
}

func (m *fakeMux) SetPaneTitle(tgt, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.titles = append(m.titles, title)
	for i := range m.panes {
		if m.panes[i].ID == tgt {
			m.panes[i].Title = title
		}
	}
	return nil
}

func (m *fakeMux) SendKeys(tgt, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, text)
	return nil
}

func (m *fakeMux) SessionOption(session, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.options[session+" "+name], nil
}

func (m *fakeMux) SetSessionOption(session, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.options == nil {
		m.options = map[string]string{}
	}
	m.options[session+" "+name] = value
	return nil
}

func newRunner(t *testing.T, mux *fakeMux) *Runner {
	t.Helper()
	return &Runner{
		ResolveSession: func() (string, error) { return "demo", nil },
		Mux:            mux,
		LockDir:        t.TempDir(),
		CodexCommand:   "codex",
	}
}

func TestRunSpawnsErrorPane(t *testing.T) {
	mux := &fakeMux{panes: []tmux.Pane{{ID: "%0", Index: 0, Title: "claude"}}}
	r := newRunner(t, mux)

	require.NoError(t, r.Run("tmux capture-pane: can't find pane: %9"))

	require.Len(t, mux.splits, 1)
	assert.Equal(t, "codex", mux.splits[0])
	require.Len(t, mux.titles, 1)
	assert.Equal(t, "codex#err1:error", mux.titles[0])

	require.Len(t, mux.sent, 1)
	prompt := mux.sent[0]
	assert.Contains(t, prompt, "can't find pane: %9")
	assert.Contains(t, prompt, "Please respond with:")
	assert.Contains(t, prompt, "Likely root cause")
}

func TestDisabledRunTouchesNoCollaborator(t *testing.T) {
	// Off by default, or disabled by flag/env even against an enable: the
	// runner must return before resolving the session or contacting tmux.
	// A nil Mux panics on any contact; ResolveSession fails the test.
	cases := []struct {
		name string
		opts Options
		env  map[string]string
	}{
		{"default off", Options{}, nil},
		{"disable flag beats enable flag", Options{EnableFlag: true, DisableFlag: true}, nil},
		{"disable env beats enable flag", Options{EnableFlag: true}, map[string]string{EnvDisable: "1"}},
		{"disable env beats enable env", Options{}, map[string]string{EnvEnable: "1", EnvDisable: "1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &Runner{
				ResolveSession: func() (string, error) {
					t.Error("session resolved on the disabled path")
					return "", nil
				},
				Mux: nil,
			}
			require.NoError(t, r.RunIfEnabled(tc.opts, genv(tc.env), "boom"))
		})
	}
}

func TestEnabledRunResolvesSession(t *testing.T) {
	mux := &fakeMux{panes: []tmux.Pane{{ID: "%0", Index: 0, Title: "claude"}}}
	resolved := false
	r := newRunner(t, mux)
	r.ResolveSession = func() (string, error) {
		resolved = true
		return "demo", nil
	}

	require.NoError(t, r.RunIfEnabled(Options{EnableFlag: true}, genv(nil), "boom"))
	assert.True(t, resolved)
	assert.Equal(t, 1, mux.versionCalls)
	assert.Len(t, mux.splits, 1)
}

func TestRunEnabledResolvesThenChecksVersion(t *testing.T) {
	mux := &fakeMux{}
	resolved := false
	r := newRunner(t, mux)
	r.ResolveSession = func() (string, error) {
		resolved = true
		return "demo", nil
	}

	require.NoError(t, r.Run("boom"))
	assert.True(t, resolved)
	assert.Equal(t, 1, mux.versionCalls)
}

func TestRunSkipsWhenErrorPaneExists(t *testing.T) {
	mux := &fakeMux{panes: []tmux.Pane{
		{ID: "%0", Index: 0, Title: "claude"},
		{ID: "%4", Index: 1, Title: "codex#err1:error"},
	}}
	r := newRunner(t, mux)

	require.NoError(t, r.Run("boom"))
	assert.Empty(t, mux.splits)
	assert.Empty(t, mux.sent)
}

func TestRunTmuxUnavailable(t *testing.T) {
	mux := &fakeMux{versionErr: errors.New("no server running")}
	r := newRunner(t, mux)

	err := r.Run("boom")
	require.Error(t, err)
	assert.Zero(t, mux.listCalls)
}

func TestRunConcurrentSpawnsAtMostOnePane(t *testing.T) {
	mux := &fakeMux{panes: []tmux.Pane{{ID: "%0", Index: 0, Title: "claude"}}}
	lockDir := t.TempDir()

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := &Runner{
				ResolveSession: func() (string, error) { return "demo", nil },
				Mux:            mux,
				LockDir:        lockDir,
				CodexCommand:   "codex",
			}
			// Busy lock and existing pane are silent successes, so every
			// worker reports nil.
			if err := r.Run("boom"); err != nil {
				t.Errorf("Run: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, len(mux.splits), 1, "more than one error pane spawned")
	assert.LessOrEqual(t, len(mux.sent), 1)
}

func TestRunSecondInvocationAfterFirst(t *testing.T) {
	mux := &fakeMux{panes: []tmux.Pane{{ID: "%0", Index: 0, Title: "claude"}}}
	r := newRunner(t, mux)

	require.NoError(t, r.Run("first failure"))
	require.NoError(t, r.Run("second failure"))

	assert.Len(t, mux.splits, 1, "second failure must reuse the existing pane")
	assert.Len(t, mux.sent, 1)
}
