// Package all registers every storage backend with the factory. Import it
// for side effects from binaries that select the backend at runtime.
package all

import (
	_ "matchetl/internal/storage/mssql"
	_ "matchetl/internal/storage/postgres"
	_ "matchetl/internal/storage/sqlite"
)
