// Package session wires resource resolution, run creation and the log
// bridge into one tracked session.
//
// A Session is an explicit value held by the caller; nothing is process
// global, and nothing is torn down implicitly. Finishing the run is always
// the caller's move.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/gcharanteja/unilogger/config"
	"github.com/gcharanteja/unilogger/domain"
	"github.com/gcharanteja/unilogger/logbridge"
	"github.com/gcharanteja/unilogger/tracker"
	"github.com/google/uuid"
)

// Options configures Start. Team and Project are required; everything else
// has a working default.
type Options struct {
	// APIKey overrides the configured credential. When empty, the key
	// from config.Load (file or environment) is used.
	APIKey string
	// BaseURL overrides the configured server address.
	BaseURL string
	// Timeout overrides the configured per-request timeout.
	Timeout time.Duration

	// Team is the team name to resolve, creating it if needed.
	Team string
	// TeamDescription is used only when the team is created.
	TeamDescription string
	// Project is the project name to resolve within the team.
	Project string
	// ProjectDescription is used only when the project is created.
	ProjectDescription string

	// RunName names the run. When empty a name is derived from the
	// project name plus a random suffix.
	RunName string
	// Config holds the run's hyperparameters.
	Config *domain.RunConfig
	// Notes annotates the run.
	Notes string
	// Tags label the run.
	Tags []string

	// SkipEnvironment leaves hostname and runtime metadata off the run.
	SkipEnvironment bool

	// Level is the minimum level the bridge forwards. Defaults to the
	// configured log level.
	Level slog.Leveler
	// Console additionally prints bridged records to stdout.
	Console bool
}

// Session is one live tracked run plus the client and logger bound to it.
type Session struct {
	Client    *tracker.Client
	TeamID    int64
	ProjectID int64
	Run       *tracker.Run
	Logger    *slog.Logger
}

// Start resolves the team and project, creates a fresh run and returns the
// session around it. Every call creates a new run; nothing is cached between
// calls. A missing API key fails fast with config.ErrMissingAPIKey before
// any request is sent.
func Start(ctx context.Context, opts Options) (*Session, error) {
	if opts.Team == "" {
		return nil, errors.New("team name is required")
	}
	if opts.Project == "" {
		return nil, errors.New("project name is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if opts.APIKey != "" {
		cfg.APIKey = opts.APIKey
	}
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.Timeout > 0 {
		cfg.Timeout = opts.Timeout
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("starting session: %w", config.ErrMissingAPIKey)
	}

	client := tracker.New(cfg.APIKey, cfg.BaseURL, cfg.Timeout)

	teamID, err := client.ResolveTeam(ctx, opts.Team, opts.TeamDescription)
	if err != nil {
		return nil, fmt.Errorf("resolving team %q: %w", opts.Team, err)
	}
	projectID, err := client.ResolveProject(ctx, teamID, opts.Project, opts.ProjectDescription)
	if err != nil {
		return nil, fmt.Errorf("resolving project %q: %w", opts.Project, err)
	}

	name := opts.RunName
	if name == "" {
		name = deriveRunName(opts.Project)
	}
	req := domain.InitRunRequest{
		Name:   name,
		Config: opts.Config,
		Notes:  opts.Notes,
		Tags:   opts.Tags,
	}
	if !opts.SkipEnvironment {
		applyEnvironment(&req)
	}

	run, err := client.InitRun(ctx, projectID, req)
	if err != nil {
		return nil, fmt.Errorf("initializing run %q: %w", name, err)
	}

	level := opts.Level
	if level == nil {
		level = cfg.LogLevel
	}
	logger := logbridge.New(run, logbridge.Options{
		Level:   level,
		Console: opts.Console,
	})

	return &Session{
		Client:    client,
		TeamID:    teamID,
		ProjectID: projectID,
		Run:       run,
		Logger:    logger,
	}, nil
}

// Track starts a session and hands it to fn. The run is NOT finished when fn
// returns; fn (or a later caller holding the session) decides that. Start
// failures and fn's error are returned as-is.
func Track(ctx context.Context, opts Options, fn func(*Session) error) error {
	s, err := Start(ctx, opts)
	if err != nil {
		return err
	}
	return fn(s)
}

// Finish marks the session's run finished.
func (s *Session) Finish(ctx context.Context) (*domain.RunFinishResult, error) {
	return s.Run.Finish(ctx)
}

// deriveRunName builds "<project-slug>-<suffix>" from the project name and a
// random suffix.
func deriveRunName(project string) string {
	slug := strings.ToLower(project)
	slug = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, slug)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "run"
	}
	return slug + "-" + uuid.NewString()[:8]
}

// applyEnvironment fills the request's host and runtime metadata.
func applyEnvironment(req *domain.InitRunRequest) {
	if host, err := os.Hostname(); err == nil {
		req.Hostname = host
	}
	req.OSInfo = runtime.GOOS + "/" + runtime.GOARCH
	req.RuntimeVersion = runtime.Version()
	if exe, err := os.Executable(); err == nil {
		req.RuntimeExecutable = exe
	}
	req.Command = strings.Join(os.Args, " ")
	req.ClientVersion = tracker.Version
}
