package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultOwner        = "fleetops"
	defaultRepo         = "platform"
	defaultDeployBranch = "deploy"
	defaultDocsURL      = "https://docs.fleetops.dev/platform/deploy-remotes"
	defaultLogLevel     = "info"
	defaultLogFormat    = "text"
)

// Config captures runtime options sourced from flags, the config file, and
// DEPLOYPICK_* environment variables.
type Config struct {
	Owner        string
	Repo         string
	SSHURL       string
	HTTPSURL     string
	DeployBranch string
	DocsURL      string

	GitHubToken     string
	GitHubBaseURL   string
	GitHubUploadURL string

	RepoDir     string
	SummaryPath string

	LogLevel  string
	LogFormat string
	Verbose   bool
	DryRun    bool
}

// SetDefaults registers configuration defaults on the viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("upstream.owner", defaultOwner)
	v.SetDefault("upstream.repo", defaultRepo)
	v.SetDefault("deploy.branch", defaultDeployBranch)
	v.SetDefault("docs_url", defaultDocsURL)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)
}

// LoadConfig reads options from the viper instance, applies defaults, and
// performs validation.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		Owner:        strings.TrimSpace(v.GetString("upstream.owner")),
		Repo:         strings.TrimSpace(v.GetString("upstream.repo")),
		SSHURL:       strings.TrimSpace(v.GetString("upstream.ssh_url")),
		HTTPSURL:     strings.TrimSpace(v.GetString("upstream.https_url")),
		DeployBranch: strings.TrimSpace(v.GetString("deploy.branch")),
		DocsURL:      strings.TrimSpace(v.GetString("docs_url")),

		GitHubToken:     strings.TrimSpace(v.GetString("github.token")),
		GitHubBaseURL:   strings.TrimSpace(v.GetString("github.base_url")),
		GitHubUploadURL: strings.TrimSpace(v.GetString("github.upload_url")),

		RepoDir:     strings.TrimSpace(v.GetString("repo_dir")),
		SummaryPath: strings.TrimSpace(v.GetString("summary_path")),

		LogLevel:  strings.ToLower(strings.TrimSpace(v.GetString("log.level"))),
		LogFormat: strings.ToLower(strings.TrimSpace(v.GetString("log.format"))),
		Verbose:   v.GetBool("verbose"),
		DryRun:    v.GetBool("dry_run"),
	}

	if cfg.Owner == "" || cfg.Repo == "" {
		return Config{}, fmt.Errorf("upstream.owner and upstream.repo are required")
	}

	if cfg.SSHURL == "" {
		cfg.SSHURL = fmt.Sprintf("git@github.com:%s/%s.git", cfg.Owner, cfg.Repo)
	}

	if cfg.HTTPSURL == "" {
		cfg.HTTPSURL = fmt.Sprintf("https://github.com/%s/%s.git", cfg.Owner, cfg.Repo)
	}

	if cfg.DeployBranch == "" {
		cfg.DeployBranch = defaultDeployBranch
	}

	if cfg.GitHubToken == "" {
		cfg.GitHubToken = strings.TrimSpace(os.Getenv("GITHUB_TOKEN"))
	}

	if (cfg.GitHubBaseURL == "") != (cfg.GitHubUploadURL == "") {
		return Config{}, fmt.Errorf("github.base_url and github.upload_url must both be set for GitHub Enterprise")
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = defaultLogFormat
	}

	supportedFormats := map[string]struct{}{"text": {}, "json": {}}
	if _, ok := supportedFormats[cfg.LogFormat]; !ok {
		return Config{}, fmt.Errorf("unsupported log format %q", cfg.LogFormat)
	}

	supportedLevels := map[string]struct{}{"debug": {}, "info": {}, "warn": {}, "warning": {}, "error": {}}
	if _, ok := supportedLevels[cfg.LogLevel]; !ok {
		return Config{}, fmt.Errorf("unsupported log level %q", cfg.LogLevel)
	}

	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}
