package catalog

// schemaSQLite is the catalog's table set, grounded on the field names
// actually read and written by the original db_manager.py (games.
// current_version/download_count, rooms.room_code/host_id/game_port,
// reviews keyed on (game_id, player_id) for upsert semantics).
const schemaSQLite = `
CREATE TABLE IF NOT EXISTS developers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	email TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	last_login TIMESTAMP
);

CREATE TABLE IF NOT EXISTS players (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	email TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	last_login TIMESTAMP
);

CREATE TABLE IF NOT EXISTS developer_sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	developer_id INTEGER NOT NULL REFERENCES developers(id),
	session_token TEXT UNIQUE NOT NULL,
	expires_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS player_sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	player_id INTEGER NOT NULL REFERENCES players(id),
	session_token TEXT UNIQUE NOT NULL,
	expires_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS games (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT,
	developer_id INTEGER NOT NULL REFERENCES developers(id),
	current_version TEXT NOT NULL,
	min_players INTEGER NOT NULL,
	max_players INTEGER NOT NULL,
	game_type TEXT NOT NULL DEFAULT 'cli',
	status TEXT NOT NULL DEFAULT 'active',
	download_count INTEGER NOT NULL DEFAULT 0,
	average_rating REAL NOT NULL DEFAULT 0.0,
	rating_count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(name, developer_id)
);

CREATE TABLE IF NOT EXISTS game_versions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id INTEGER NOT NULL REFERENCES games(id),
	version TEXT NOT NULL,
	changelog TEXT,
	file_path TEXT NOT NULL,
	file_size INTEGER NOT NULL,
	checksum TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(game_id, version)
);

CREATE TABLE IF NOT EXISTS downloads (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id INTEGER NOT NULL REFERENCES games(id),
	player_id INTEGER NOT NULL REFERENCES players(id),
	version TEXT NOT NULL,
	downloaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS reviews (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id INTEGER NOT NULL REFERENCES games(id),
	player_id INTEGER NOT NULL REFERENCES players(id),
	rating INTEGER NOT NULL,
	comment TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(game_id, player_id)
);

CREATE TABLE IF NOT EXISTS rooms (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id INTEGER NOT NULL REFERENCES games(id),
	host_id INTEGER NOT NULL REFERENCES players(id),
	name TEXT NOT NULL,
	room_code TEXT UNIQUE NOT NULL,
	max_players INTEGER NOT NULL,
	status TEXT NOT NULL DEFAULT 'waiting',
	game_port INTEGER,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS room_players (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id INTEGER NOT NULL REFERENCES rooms(id),
	player_id INTEGER NOT NULL REFERENCES players(id),
	joined_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(room_id, player_id)
);

-- registration_log supplements the distilled spec: the original server logs
-- every successful registration for support/audit purposes.
CREATE TABLE IF NOT EXISTS registration_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	principal_kind TEXT NOT NULL,
	principal_id INTEGER NOT NULL,
	username TEXT NOT NULL,
	registered_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// schemaPostgres is schemaSQLite's table set translated to Postgres DDL:
// AUTOINCREMENT has no Postgres spelling, so every primary key becomes
// SERIAL/BIGSERIAL instead.
const schemaPostgres = `
CREATE TABLE IF NOT EXISTS developers (
	id SERIAL PRIMARY KEY,
	username TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	email TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	last_login TIMESTAMP
);

CREATE TABLE IF NOT EXISTS players (
	id SERIAL PRIMARY KEY,
	username TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	email TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	last_login TIMESTAMP
);

CREATE TABLE IF NOT EXISTS developer_sessions (
	id SERIAL PRIMARY KEY,
	developer_id INTEGER NOT NULL REFERENCES developers(id),
	session_token TEXT UNIQUE NOT NULL,
	expires_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS player_sessions (
	id SERIAL PRIMARY KEY,
	player_id INTEGER NOT NULL REFERENCES players(id),
	session_token TEXT UNIQUE NOT NULL,
	expires_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS games (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	developer_id INTEGER NOT NULL REFERENCES developers(id),
	current_version TEXT NOT NULL,
	min_players INTEGER NOT NULL,
	max_players INTEGER NOT NULL,
	game_type TEXT NOT NULL DEFAULT 'cli',
	status TEXT NOT NULL DEFAULT 'active',
	download_count INTEGER NOT NULL DEFAULT 0,
	average_rating REAL NOT NULL DEFAULT 0.0,
	rating_count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(name, developer_id)
);

CREATE TABLE IF NOT EXISTS game_versions (
	id SERIAL PRIMARY KEY,
	game_id INTEGER NOT NULL REFERENCES games(id),
	version TEXT NOT NULL,
	changelog TEXT,
	file_path TEXT NOT NULL,
	file_size INTEGER NOT NULL,
	checksum TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(game_id, version)
);

CREATE TABLE IF NOT EXISTS downloads (
	id SERIAL PRIMARY KEY,
	game_id INTEGER NOT NULL REFERENCES games(id),
	player_id INTEGER NOT NULL REFERENCES players(id),
	version TEXT NOT NULL,
	downloaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS reviews (
	id SERIAL PRIMARY KEY,
	game_id INTEGER NOT NULL REFERENCES games(id),
	player_id INTEGER NOT NULL REFERENCES players(id),
	rating INTEGER NOT NULL,
	comment TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(game_id, player_id)
);

CREATE TABLE IF NOT EXISTS rooms (
	id SERIAL PRIMARY KEY,
	game_id INTEGER NOT NULL REFERENCES games(id),
	host_id INTEGER NOT NULL REFERENCES players(id),
	name TEXT NOT NULL,
	room_code TEXT UNIQUE NOT NULL,
	max_players INTEGER NOT NULL,
	status TEXT NOT NULL DEFAULT 'waiting',
	game_port INTEGER,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS room_players (
	id SERIAL PRIMARY KEY,
	room_id INTEGER NOT NULL REFERENCES rooms(id),
	player_id INTEGER NOT NULL REFERENCES players(id),
	joined_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(room_id, player_id)
);

-- registration_log supplements the distilled spec: the original server logs
-- every successful registration for support/audit purposes.
CREATE TABLE IF NOT EXISTS registration_log (
	id SERIAL PRIMARY KEY,
	principal_kind TEXT NOT NULL,
	principal_id INTEGER NOT NULL,
	username TEXT NOT NULL,
	registered_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// schemaMySQL is schemaSQLite's table set translated to MySQL DDL:
// AUTOINCREMENT becomes AUTO_INCREMENT, and REAL/TEXT keep their MySQL
// meanings (DOUBLE and TEXT respectively) so no column types need renaming.
const schemaMySQL = `
CREATE TABLE IF NOT EXISTS developers (
	id INTEGER AUTO_INCREMENT PRIMARY KEY,
	username VARCHAR(255) UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	email TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	last_login TIMESTAMP NULL
);

CREATE TABLE IF NOT EXISTS players (
	id INTEGER AUTO_INCREMENT PRIMARY KEY,
	username VARCHAR(255) UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	email TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	last_login TIMESTAMP NULL
);

CREATE TABLE IF NOT EXISTS developer_sessions (
	id INTEGER AUTO_INCREMENT PRIMARY KEY,
	developer_id INTEGER NOT NULL REFERENCES developers(id),
	session_token VARCHAR(512) UNIQUE NOT NULL,
	expires_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS player_sessions (
	id INTEGER AUTO_INCREMENT PRIMARY KEY,
	player_id INTEGER NOT NULL REFERENCES players(id),
	session_token VARCHAR(512) UNIQUE NOT NULL,
	expires_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS games (
	id INTEGER AUTO_INCREMENT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	developer_id INTEGER NOT NULL REFERENCES developers(id),
	current_version VARCHAR(255) NOT NULL,
	min_players INTEGER NOT NULL,
	max_players INTEGER NOT NULL,
	game_type VARCHAR(32) NOT NULL DEFAULT 'cli',
	status VARCHAR(32) NOT NULL DEFAULT 'active',
	download_count INTEGER NOT NULL DEFAULT 0,
	average_rating REAL NOT NULL DEFAULT 0.0,
	rating_count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(name(191), developer_id)
);

CREATE TABLE IF NOT EXISTS game_versions (
	id INTEGER AUTO_INCREMENT PRIMARY KEY,
	game_id INTEGER NOT NULL REFERENCES games(id),
	version VARCHAR(64) NOT NULL,
	changelog TEXT,
	file_path TEXT NOT NULL,
	file_size BIGINT NOT NULL,
	checksum VARCHAR(64) NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(game_id, version)
);

CREATE TABLE IF NOT EXISTS downloads (
	id INTEGER AUTO_INCREMENT PRIMARY KEY,
	game_id INTEGER NOT NULL REFERENCES games(id),
	player_id INTEGER NOT NULL REFERENCES players(id),
	version VARCHAR(64) NOT NULL,
	downloaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS reviews (
	id INTEGER AUTO_INCREMENT PRIMARY KEY,
	game_id INTEGER NOT NULL REFERENCES games(id),
	player_id INTEGER NOT NULL REFERENCES players(id),
	rating INTEGER NOT NULL,
	comment TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(game_id, player_id)
);

CREATE TABLE IF NOT EXISTS rooms (
	id INTEGER AUTO_INCREMENT PRIMARY KEY,
	game_id INTEGER NOT NULL REFERENCES games(id),
	host_id INTEGER NOT NULL REFERENCES players(id),
	name TEXT NOT NULL,
	room_code VARCHAR(16) UNIQUE NOT NULL,
	max_players INTEGER NOT NULL,
	status VARCHAR(32) NOT NULL DEFAULT 'waiting',
	game_port INTEGER,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS room_players (
	id INTEGER AUTO_INCREMENT PRIMARY KEY,
	room_id INTEGER NOT NULL REFERENCES rooms(id),
	player_id INTEGER NOT NULL REFERENCES players(id),
	joined_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(room_id, player_id)
);

-- registration_log supplements the distilled spec: the original server logs
-- every successful registration for support/audit purposes.
CREATE TABLE IF NOT EXISTS registration_log (
	id INTEGER AUTO_INCREMENT PRIMARY KEY,
	principal_kind VARCHAR(32) NOT NULL,
	principal_id INTEGER NOT NULL,
	username VARCHAR(255) NOT NULL,
	registered_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// createSchema applies the table set matching dialect ("sqlite", "postgres",
// or "mysql" — see normalizeDialect).
func createSchema(exec execer, dialect string) error {
	var ddl string
	switch dialect {
	case "postgres":
		ddl = schemaPostgres
	case "mysql":
		ddl = schemaMySQL
	default:
		ddl = schemaSQLite
	}
	_, err := exec.Exec(ddl)
	return err
}
