package layout

import (
	"os"
	"path/filepath"
	"strings"
)

// Default directory name for user layout catalogs under the home directory.
const defaultLayoutsDirName = ".poblur/layouts"

// EnvLayoutsDir overrides the layouts directory.
const EnvLayoutsDir = "POBLUR_LAYOUTS_DIR"

// GetLayoutsDir returns the directory searched for named layout catalogs.
// Priority: 1. explicit dir parameter, 2. environment variable, 3. the
// per-user default under the home directory.
func GetLayoutsDir(dir string) string {
	if dir != "" {
		return dir
	}
	if envDir := os.Getenv(EnvLayoutsDir); envDir != "" {
		return envDir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, defaultLayoutsDirName)
	}
	return "layouts"
}

// ResolvePath turns a layout reference into a file path. References containing
// a path separator or a YAML extension are used as-is; bare names resolve to
// <layouts dir>/<name>.yaml.
func ResolvePath(layoutsDir, ref string) string {
	if ref == "" {
		return ""
	}
	if strings.ContainsRune(ref, os.PathSeparator) || strings.ContainsRune(ref, '/') {
		return ref
	}
	ext := strings.ToLower(filepath.Ext(ref))
	if ext == ".yaml" || ext == ".yml" {
		return ref
	}
	return filepath.Join(GetLayoutsDir(layoutsDir), ref+".yaml")
}
