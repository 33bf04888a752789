package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/loykin/repobatch/internal/ado"
	"github.com/loykin/repobatch/internal/batch"
	"github.com/loykin/repobatch/internal/common"
	"github.com/loykin/repobatch/internal/config"
	"github.com/loykin/repobatch/internal/credential"
	"github.com/loykin/repobatch/internal/github"
	"github.com/loykin/repobatch/internal/httpc"
	"github.com/loykin/repobatch/internal/outcome"
	"github.com/loykin/repobatch/internal/rest"
	"github.com/loykin/repobatch/internal/store"
	"github.com/spf13/viper"
)

// runtime holds everything a subcommand needs for one run: resolved
// credential, HTTP factory, outcome logger, and the optional run-history
// store. Setup errors here mean no target was attempted yet.
type runtime struct {
	cfg       *config.ConfigDoc
	cred      credential.Credential
	transport *httpc.Httpc
	trace     *httpc.Trace
	outcomes  *outcome.Logger
	store     *store.Store
	runID     int64
	logger    *common.Logger
	command   string
}

// newRuntime loads the config, configures logging, resolves the credential
// and opens the history store. The credential is resolved once, up front,
// before any target is enumerated.
func newRuntime(ctx context.Context, command string, flavor credential.Flavor) (*runtime, error) {
	cfg := &config.ConfigDoc{}
	if err := cfg.Load(viper.GetString("config")); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if viper.GetBool("debug") {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.SetupLogging(); err != nil {
		return nil, err
	}

	if flavor == credential.AzureDevOps && cfg.AzureDevOps.Organization == "" {
		return nil, errors.New("azure_devops.organization is not configured")
	}
	if flavor == credential.GitHub && cfg.Github.Owner == "" {
		return nil, errors.New("github.owner is not configured")
	}

	rt := &runtime{
		cfg:     cfg,
		logger:  common.GetLogger().WithComponent("run"),
		command: command,
	}

	cred, err := cfg.ResolveCredential(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve credential: %w", err)
	}
	rt.cred = cred

	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	tlsCfg, err := cfg.TLSConfig()
	if err != nil {
		return nil, err
	}
	rt.transport = &httpc.Httpc{TlsConfig: tlsCfg, Timeout: timeout}
	if viper.GetBool("debug") {
		name := fmt.Sprintf("%s_trace_%s.log", cfg.LogPrefix(), time.Now().Format("2006-01-02"))
		rt.trace = httpc.NewTrace(filepath.Join(cfg.LogDir(), name))
		rt.transport.Trace = rt.trace
	}

	rt.outcomes = outcome.NewLogger(cfg.LogDir(), cfg.LogPrefix())

	st, err := store.New(cfg.StoreConfig())
	if err != nil {
		return nil, err
	}
	if st != nil {
		if err := st.Connect(); err != nil {
			return nil, err
		}
		org := cfg.AzureDevOps.Organization
		if flavor == credential.GitHub {
			org = cfg.Github.Owner
		}
		runID, err := st.BeginRun(command, org)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		rt.store = st
		rt.runID = runID
	}
	return rt, nil
}

// restClient builds the REST client with the Authorization header rendered
// for the given API flavor.
func (rt *runtime) restClient(flavor credential.Flavor) *rest.Client {
	var headers map[string]string
	if flavor == credential.GitHub {
		headers = map[string]string{"Accept": github.AcceptHeader}
	}
	return rest.New(rt.transport, rt.cred.Header(flavor), headers)
}

// adoClient builds the Azure DevOps client from config.
func (rt *runtime) adoClient() *ado.Client {
	return ado.NewClient(rt.restClient(credential.AzureDevOps),
		rt.cfg.ADOBaseURL(), rt.cfg.AzureDevOps.Organization, rt.cfg.ADOAPIVersion())
}

// githubClient builds the GitHub client from config.
func (rt *runtime) githubClient() *github.Client {
	return github.NewClient(rt.restClient(credential.GitHub),
		rt.cfg.GithubBaseURL(), rt.cfg.Github.Owner)
}

// recorders returns the per-record sinks for the batch engine.
func (rt *runtime) recorders() []batch.Recorder {
	recs := []batch.Recorder{rt.outcomes}
	if rt.store != nil {
		recs = append(recs, rt.store.NewRecorder(context.Background(), rt.runID))
	}
	return recs
}

// finish flushes the outcome log, closes the store and trace, reports the
// run summary, and returns the process exit code.
func (rt *runtime) finish(res batch.Result) int {
	code := exitSuccess
	if !res.AllSucceeded() {
		code = exitRunFailed
	}

	if err := rt.outcomes.Flush(); err != nil {
		rt.logger.Warn("failed to flush outcome log", "error", err)
	}
	rt.closeStore(res.AllSucceeded())
	rt.closeTrace()

	if code == exitSuccess {
		rt.logger.Info("run finished with full success",
			"command", rt.command, "targets", len(res.Records), "log", rt.outcomes.Path())
	} else {
		rt.logger.Warn("run finished with failures, see the log file for details",
			"command", rt.command, "targets", len(res.Records),
			"failed", len(res.Failures()), "log", rt.outcomes.Path())
	}
	return code
}

// fail aborts a run that broke during target enumeration. The credential
// already resolved, so this counts as a run failure, not setup.
func (rt *runtime) fail(err error, msg string) {
	rt.logger.Error(msg, "error", err)
	rt.closeStore(false)
	rt.closeTrace()
	exitHandler.Exit(exitRunFailed)
}

// failSetup aborts on a configuration problem discovered after the runtime
// opened its resources but before any target was attempted.
func (rt *runtime) failSetup(err error, msg string) {
	rt.closeStore(false)
	rt.closeTrace()
	exitHandler.LogSetupError(err, msg)
}

func (rt *runtime) closeStore(succeeded bool) {
	if rt.store == nil {
		return
	}
	if err := rt.store.FinishRun(rt.runID, succeeded); err != nil {
		rt.logger.Warn("failed to finish run in history store", "error", err)
	}
	if err := rt.store.Close(); err != nil {
		rt.logger.Warn("failed to close history store", "error", err)
	}
	rt.store = nil
}

func (rt *runtime) closeTrace() {
	if rt.trace == nil {
		return
	}
	if err := rt.trace.Err(); err != nil {
		rt.logger.Warn("debug trace incomplete", "error", err)
	}
	_ = rt.trace.Close()
	rt.trace = nil
}
