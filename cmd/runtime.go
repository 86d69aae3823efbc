package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/nextlevelbuilder/dictaflow/internal/awscred"
	"github.com/nextlevelbuilder/dictaflow/internal/config"
	"github.com/nextlevelbuilder/dictaflow/internal/enhance"
	"github.com/nextlevelbuilder/dictaflow/internal/provider"
	"github.com/nextlevelbuilder/dictaflow/internal/secrets"
	"github.com/nextlevelbuilder/dictaflow/internal/validation"
)

// runtime bundles the wired application components for one CLI invocation.
type runtime struct {
	settings  *config.Store
	watcher   *config.Watcher
	secrets   secrets.Store
	resolver  *awscred.Resolver
	sessions  *provider.Builder
	pipeline  *enhance.Pipeline
	validator *validation.Service
}

// newRuntime loads settings and wires the component graph: settings changes
// rebuild the shared session, and the pipeline and validator share both.
func newRuntime(ctx context.Context) (*runtime, error) {
	path, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}
	store, err := config.NewStore(path)
	if err != nil {
		return nil, err
	}

	secretStore := secrets.Store(secrets.NewKeyringStore())
	resolver := awscred.NewResolver()
	sessions := provider.NewBuilder(store, secretStore, resolver)

	store.OnChange(func(config.Settings) {
		sessions.Rebuild(context.Background())
	})
	sessions.Rebuild(ctx)

	// Hot reload is best effort: the settings file may not exist yet.
	watcher, err := config.NewWatcher(store)
	if err == nil {
		if err := watcher.Start(); err != nil {
			watcher.Stop()
			watcher = nil
		}
	}

	return &runtime{
		settings:  store,
		watcher:   watcher,
		secrets:   secretStore,
		resolver:  resolver,
		sessions:  sessions,
		pipeline:  enhance.NewPipeline(sessions, store, nil),
		validator: validation.NewService(store, sessions),
	}, nil
}

// close releases background resources held by the runtime.
func (rt *runtime) close() {
	if rt.watcher != nil {
		rt.watcher.Stop()
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
