package app

import (
	"context"
	"os"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"aurdist/internal/adapters"
	"aurdist/internal/core"
	"aurdist/internal/ports"
	"aurdist/internal/types"
)

// Config carries the run-wide settings resolved from flags, environment and
// the optional config file.
type Config struct {
	OutputDir     string
	DBName        string
	Arch          string
	RegistryURL   string
	SourceBaseURL string
	TargetsFile   string
	RemoteMarker  string
	LedgerFile    string
	CheckRemote   bool
	StreamOutput  bool
	Sync          types.SyncOptions
}

func DefaultConfig() Config {
	return Config{
		OutputDir:    "packages",
		DBName:       "aurdist.db.tar.zst",
		Arch:         "x86_64",
		TargetsFile:  "targets.txt",
		RemoteMarker: ".where",
		LedgerFile:   ".aurdist-ledger",
	}
}

// Service wires the collaborator ports together with the run-wide state.
// Everything is strictly sequential: one logical thread of control mutates
// the filesystem and the ledger.
type Service struct {
	System    ports.SystemPackagePort
	Registry  ports.RegistryPort
	Source    ports.SourceFetchPort
	Build     ports.BuildToolPort
	Index     ports.RepoIndexPort
	Syncer    ports.SyncPort
	Container ports.ContainerBuildPort
	Ledger    *core.Ledger
	Failures  *core.FailureLog
	Config    Config
	RootDir   string
	Clock     func() time.Time
}

func NewService(cfg Config) (*Service, error) {
	rootDir, err := os.Getwd()
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to determine working directory").
			WithCause(err)
	}
	runner := adapters.NewCommandRunnerAdapter(cfg.StreamOutput)
	ledger, err := core.LoadLedger(cfg.LedgerFile)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to load installation ledger").
			WithCause(err)
	}
	return &Service{
		System:    adapters.NewPacmanAdapter(runner),
		Registry:  adapters.NewRegistryAdapter(cfg.RegistryURL),
		Source:    adapters.NewGitSourceAdapter(cfg.SourceBaseURL, rootDir, runner),
		Build:     adapters.NewMakepkgAdapter(runner),
		Index:     adapters.NewRepoAddAdapter(cfg.DBName, runner),
		Syncer:    adapters.NewRsyncAdapter(runner),
		Container: adapters.NewDockerBuildAdapter(rootDir, cfg.OutputDir, runner),
		Ledger:    ledger,
		Failures:  core.NewFailureLog(),
		Config:    cfg,
		RootDir:   rootDir,
		Clock:     time.Now,
	}, nil
}

func (s *Service) resolver() *core.Resolver {
	return core.NewResolver(s.System, s.Registry, s.Source, s.Build, s.Ledger, s.Failures, s.RootDir)
}

func (s *Service) staleness() core.StalenessChecker {
	checker := core.StalenessChecker{
		OutputDir: s.Config.OutputDir,
		Arch:      s.Config.Arch,
		Registry:  s.Registry,
	}
	if s.Config.CheckRemote {
		checker.RemoteList = func(ctx context.Context) ([]string, error) {
			remoteSpec, err := s.remoteSpec()
			if err != nil {
				return nil, err
			}
			if remoteSpec == "" {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeFailedPrecondition).
					WithMsg("remote checking requires a remote marker file")
			}
			return s.Syncer.ListRemote(ctx, remoteSpec, s.Config.Sync)
		}
	}
	return checker
}
