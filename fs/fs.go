package appfs

import (
	"embed"
)

// FS embeds the database migrations and email templates.
//go:embed migrations templates
var FS embed.FS
