package schema

// TableDefinitions contains all the SQL statements to create the database
// tables. The unique indexes and foreign keys here are load-bearing: the
// webhook core relies on storage-level constraints, not application checks,
// for contact email uniqueness and delivery deduplication.
var TableDefinitions = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		first_name VARCHAR(255),
		last_name VARCHAR(255),
		role VARCHAR(20) NOT NULL DEFAULT 'member',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS contacts (
		id UUID PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		first_name VARCHAR(255),
		last_name VARCHAR(255),
		phone VARCHAR(50),
		company VARCHAR(255),
		user_id UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pipelines (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		user_id UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pipeline_stages (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		position INTEGER NOT NULL,
		pipeline_id UUID NOT NULL REFERENCES pipelines(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS deals (
		id UUID PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		value DOUBLE PRECISION NOT NULL DEFAULT 0,
		currency VARCHAR(10) NOT NULL DEFAULT 'USD',
		stage_id UUID NOT NULL REFERENCES pipeline_stages(id),
		pipeline_id UUID NOT NULL REFERENCES pipelines(id),
		contact_id UUID REFERENCES contacts(id),
		user_id UUID NOT NULL REFERENCES users(id),
		data JSONB,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_deals_title_pipeline_user
		ON deals (title, pipeline_id, user_id)`,
	`CREATE TABLE IF NOT EXISTS activities (
		id UUID PRIMARY KEY,
		type VARCHAR(50) NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		contact_id UUID REFERENCES contacts(id),
		deal_id UUID REFERENCES deals(id),
		user_id UUID NOT NULL REFERENCES users(id),
		data JSONB,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS webhook_logs (
		id UUID PRIMARY KEY,
		delivery_id VARCHAR(512) UNIQUE NOT NULL,
		endpoint VARCHAR(255) NOT NULL,
		payload TEXT NOT NULL,
		status VARCHAR(20) NOT NULL,
		http_status INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS workflows (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		user_id UUID NOT NULL REFERENCES users(id),
		status VARCHAR(20) NOT NULL,
		trigger_events JSONB NOT NULL,
		conditions JSONB NOT NULL DEFAULT '[]',
		actions JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id UUID PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'open',
		due_at TIMESTAMP,
		contact_id UUID REFERENCES contacts(id),
		deal_id UUID REFERENCES deals(id),
		user_id UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS integrations (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		provider VARCHAR(50) NOT NULL,
		encrypted_api_key TEXT NOT NULL,
		base_url VARCHAR(255) NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE (user_id, provider)
	)`,
}
