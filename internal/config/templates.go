package config

import (
	"fmt"
	"os"
)

// WriteTemplate writes a commented starter config to path.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(Template), 0o600)
}

const Template = `# seedctl configuration
name = "seedctl"
addr = ":9100"
cors_origins = ["http://localhost:3000"]

# Bearer tokens accepted by the HTTP tool routes. Leave empty to disable auth.
auth_tokens = []

# Seed commands are killed after this long.
command_timeout = "2m"

# "reject" fails a second seed of the same project while one is running,
# "wait" queues it.
concurrency = "reject"

# Record successful seeds in <project>/.seedctl/seed-state.toml and skip
# repeat seeds for the same env unless force is set.
skip_seeded = false

log_level = "info"

# Per-ecosystem command overrides.
[commands]
# alembic = "alembic upgrade head"
`
