package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	ErrNoConfig       = errors.New("no config selected")
	ErrProfileExists  = errors.New("config already exists")
	ErrProfileMissing = errors.New("config does not exist")
)

// DefaultLabel names the profile created by init. Removing the active
// profile falls back to it, so it can be neither removed nor renamed.
const DefaultLabel = "Default"

// HomeEnv overrides the configuration root.
const HomeEnv = "MANGADL_HOME"

const profileExt = ".yaml"

func ConfigRoot() string {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir
	}

	// Windows
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, "mangadl")
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mangadl")
	}

	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "mangadl")
}

func ConfigsDir() string {
	return filepath.Join(ConfigRoot(), "configs")
}

func CurrentLabelFile() string {
	return filepath.Join(ConfigRoot(), "current_config")
}

// HistoryFile holds the last downloaded chapter of every title.
func HistoryFile() string {
	return filepath.Join(ConfigRoot(), "history.yaml")
}

func profilePath(label string) string {
	return filepath.Join(ConfigsDir(), label+profileExt)
}

func ensureDirs() error {
	return os.MkdirAll(ConfigsDir(), 0755)
}

func checkLabel(label string) (string, error) {
	label = strings.TrimSpace(label)
	switch {
	case label == "":
		return "", errors.New("label cannot be empty")
	case label == "." || label == ".." || strings.ContainsAny(label, `/\`):
		return "", fmt.Errorf("invalid label %q", label)
	}

	return label, nil
}

// lookup resolves label to its file, which must exist when existing is
// true and must not exist otherwise.
func lookup(label string, existing bool) (string, string, error) {
	label, err := checkLabel(label)
	if err != nil {
		return "", "", err
	}
	if err := ensureDirs(); err != nil {
		return "", "", err
	}

	path := profilePath(label)
	_, statErr := os.Stat(path)
	switch found := statErr == nil; {
	case existing && !found:
		return "", "", fmt.Errorf("%w: %q", ErrProfileMissing, label)
	case !existing && found:
		return "", "", fmt.Errorf("%w: %q", ErrProfileExists, label)
	}

	return label, path, nil
}

func setActive(label string) error {
	return os.WriteFile(CurrentLabelFile(), []byte(label+"\n"), 0644)
}

func CurrentLabel() (string, error) {
	if err := ensureDirs(); err != nil {
		return "", err
	}

	b, err := os.ReadFile(CurrentLabelFile())
	if os.IsNotExist(err) {
		return "", ErrNoConfig
	}
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(b)), nil
}

func ActiveConfigPath() (string, error) {
	label, err := CurrentLabel()
	if err != nil {
		return "", err
	}
	if label == "" {
		return "", ErrNoConfig
	}

	return profilePath(label), nil
}

// Profile is one stored config together with the title it follows.
type Profile struct {
	Label  string
	Path   string
	Active bool
	Site   string
	Manga  string
	// Err is set when the file cannot be read or parsed.
	Err error
}

// Summary describes what the profile downloads, e.g. "Naruto on MangaFox".
func (p Profile) Summary() string {
	switch {
	case p.Err != nil:
		return "unreadable"
	case p.Manga == "":
		return "any title on " + p.Site
	default:
		return p.Manga + " on " + p.Site
	}
}

func readProfile(label, path string, active bool) Profile {
	p := Profile{Label: label, Path: path, Active: active}

	cfg, err := loadYAML(path)
	if err != nil {
		p.Err = err
		return p
	}

	p.Site, p.Manga = cfg.Site, cfg.Manga
	return p
}

// ReadProfile loads the stored profile named label. A profile that exists
// but does not parse is returned with Err set.
func ReadProfile(label string) (Profile, error) {
	label, path, err := lookup(label, true)
	if err != nil {
		return Profile{}, err
	}

	active, _ := CurrentLabel()
	return readProfile(label, path, label == active), nil
}

// ListConfigs returns every stored profile sorted by label. Unreadable
// files are listed with Err set rather than failing the listing.
func ListConfigs() ([]Profile, error) {
	if err := ensureDirs(); err != nil {
		return nil, err
	}

	matches, err := filepath.Glob(filepath.Join(ConfigsDir(), "*"+profileExt))
	if err != nil {
		return nil, err
	}

	active, _ := CurrentLabel()
	out := make([]Profile, 0, len(matches))
	for _, path := range matches {
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			continue
		}

		label := strings.TrimSuffix(filepath.Base(path), profileExt)
		out = append(out, readProfile(label, path, label == active))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

// SwitchConfig makes label the active profile and returns it.
func SwitchConfig(label string) (Profile, error) {
	label, path, err := lookup(label, true)
	if err != nil {
		return Profile{}, err
	}

	p := readProfile(label, path, true)
	if p.Err != nil {
		return p, fmt.Errorf("config %q is not valid: %w", label, p.Err)
	}

	return p, setActive(label)
}

// AddConfig stores a copy of the YAML file at srcPath as a new profile. The
// file must parse as a config.
func AddConfig(label, srcPath string) (string, error) {
	_, dst, err := lookup(label, false)
	if err != nil {
		return "", err
	}

	if _, err := loadYAML(srcPath); err != nil {
		return "", fmt.Errorf("%s is not a mangadl config: %w", srcPath, err)
	}

	raw, err := os.ReadFile(srcPath)
	if err != nil {
		return "", err
	}

	return dst, os.WriteFile(dst, raw, 0644)
}

func CreateEmptyConfig(label string) (string, error) {
	_, path, err := lookup(label, false)
	if err != nil {
		return "", err
	}

	return path, SaveYAML(DefaultConfig(), path)
}

// RenameConfig moves a profile to a new label, keeping it active if it was.
func RenameConfig(oldLabel, newLabel string) (Profile, error) {
	oldLabel, oldPath, err := lookup(oldLabel, true)
	if err != nil {
		return Profile{}, err
	}
	if oldLabel == DefaultLabel {
		return Profile{}, fmt.Errorf("the %s config cannot be renamed", DefaultLabel)
	}

	newLabel, newPath, err := lookup(newLabel, false)
	if err != nil {
		return Profile{}, err
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return Profile{}, err
	}

	active, _ := CurrentLabel()
	if active == oldLabel {
		if err := setActive(newLabel); err != nil {
			return Profile{}, err
		}
	}

	return readProfile(newLabel, newPath, active == oldLabel), nil
}

// ResetConfig overwrites the profile at path with the defaults. With
// keepTitle the site, title and last downloaded chapter survive the reset.
func ResetConfig(path string, keepTitle bool) (*Config, error) {
	cfg := DefaultConfig()

	if keepTitle {
		old, err := loadYAML(path)
		if err != nil {
			return nil, err
		}
		cfg.Site = old.Site
		cfg.Manga = old.Manga
		cfg.LastDownloaded = old.LastDownloaded
	}

	if err := SaveYAML(cfg, path); err != nil {
		return nil, err
	}

	return cfg, nil
}

// RemoveConfig deletes a profile. Removing the active one switches back to
// the default profile, reported by switched.
func RemoveConfig(label string) (switched bool, err error) {
	label, path, err := lookup(label, true)
	if err != nil {
		return false, err
	}
	if label == DefaultLabel {
		return false, fmt.Errorf("the %s config cannot be removed", DefaultLabel)
	}

	if active, _ := CurrentLabel(); active == label {
		if _, err := SwitchConfig(DefaultLabel); err != nil {
			return false, fmt.Errorf("failed switching to %s: %w", DefaultLabel, err)
		}
		switched = true
	}

	return switched, os.Remove(path)
}

// InitDefaultConfig writes the default profile unless it exists and makes
// it active either way. An existing profile yields os.ErrExist.
func InitDefaultConfig() (string, error) {
	if err := ensureDirs(); err != nil {
		return "", err
	}

	path := profilePath(DefaultLabel)
	_, statErr := os.Stat(path)
	if statErr != nil {
		if err := SaveYAML(DefaultConfig(), path); err != nil {
			return "", err
		}
	}

	if err := setActive(DefaultLabel); err != nil {
		return "", err
	}
	if statErr == nil {
		return path, os.ErrExist
	}

	return path, nil
}

// ConfigPathByLabel returns the file of an existing profile.
func ConfigPathByLabel(label string) (string, error) {
	_, path, err := lookup(label, true)
	return path, err
}
