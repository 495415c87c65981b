package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bft-labs/wow/internal/domain"
)

// ResolveWorkspace returns the directory all wow files live in. An explicit
// override (flag or WOW_WORKSPACE) wins; otherwise it is the directory of the
// running executable with symlinks resolved.
func ResolveWorkspace(override string) (string, error) {
	if override == "" {
		override = os.Getenv("WOW_WORKSPACE")
	}
	if override != "" {
		abs, err := filepath.Abs(override)
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrWorkspace, err)
		}
		return abs, nil
	}
	return executableDir(os.Executable)
}

func executableDir(executable func() (string, error)) (string, error) {
	exe, err := executable()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrWorkspace, err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	dir := filepath.Dir(exe)
	if dir == "" || dir == "." {
		return "", fmt.Errorf("%w: executable path %q has no parent", domain.ErrWorkspace, exe)
	}
	return dir, nil
}

// Load assembles the settings for workspace: defaults, then .env, then
// wow.toml, then WOW_* environment, with flags in changed taking precedence
// over all of them. cfg must already hold any flag values.
func Load(cfg *Config, workspace string, changed map[string]bool) error {
	cfg.Workspace = workspace

	if err := LoadDotEnv(workspace); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	if path := SettingsPath(workspace); FileExists(path) {
		fc, err := LoadFileConfig(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", SettingsFileName, err)
		}
		if err := ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}

	return cfg.Validate()
}
