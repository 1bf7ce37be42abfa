package layout

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a catalog from a YAML file and validates it.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-provided layout path is expected
	if err != nil {
		return Catalog{}, fmt.Errorf("read layout file: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse layout file %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, fmt.Errorf("invalid layout file %s: %w", path, err)
	}
	return c, nil
}

// Save writes a catalog to a YAML file.
func Save(c Catalog, path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write layout file: %w", err)
	}
	return nil
}

const templateHeader = `# poblur layout catalog
#
# Areas are fractions of the image size in [0, 1]:
#   x, y          top-left corner
#   width, height extent
# Labels must be unique; they are matched case-insensitively by --areas.
`

// WriteTemplate writes a commented starter layout file containing the built-in
// purchase-order areas. It refuses to overwrite an existing file.
func WriteTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("layout file already exists: %s", path)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("encode layout template: %w", err)
	}
	content := append([]byte(templateHeader), data...)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("write layout template: %w", err)
	}
	return nil
}
