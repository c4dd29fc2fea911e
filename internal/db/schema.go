package db

// SchemaSQL is the complete schema for fresh installs.
//
// This is the single source of truth for the database schema. All repository
// tests build their in-memory database from GetSchemaSQL(), so a repository
// referencing a column that does not exist here fails immediately with
// "no such column" at test time.
const SchemaSQL = `
-- Source channels
CREATE TABLE IF NOT EXISTS channels (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('open', 'read_only', 'archived', 'closed')) DEFAULT 'open',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Channel messages (ordered, append-only log; soft delete flag)
CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	channel_id TEXT NOT NULL,
	author TEXT NOT NULL,
	body TEXT NOT NULL,
	kind TEXT NOT NULL CHECK(kind IN ('user', 'placeholder')) DEFAULT 'user',
	deleted INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (channel_id) REFERENCES channels(id)
);

CREATE INDEX IF NOT EXISTS idx_messages_channel_order ON messages(channel_id, created_at, id);

-- Per-user channel memberships
CREATE TABLE IF NOT EXISTS memberships (
	channel_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	following INTEGER NOT NULL DEFAULT 1,
	last_read_message_id TEXT,
	PRIMARY KEY (channel_id, user_id),
	FOREIGN KEY (channel_id) REFERENCES channels(id)
);

-- Destination topics
CREATE TABLE IF NOT EXISTS topics (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	category TEXT,
	tags TEXT,
	author TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('open', 'closed', 'archived')) DEFAULT 'open',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Destination posts (position is the append order within a topic; batch_key
-- is the deterministic dedup key for pipeline-generated posts)
CREATE TABLE IF NOT EXISTS posts (
	id TEXT PRIMARY KEY,
	topic_id TEXT NOT NULL,
	author TEXT NOT NULL,
	body TEXT NOT NULL,
	position INTEGER NOT NULL,
	batch_key TEXT UNIQUE,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (topic_id) REFERENCES topics(id),
	UNIQUE(topic_id, position)
);

-- Auxiliary records: owned by a message until migrated, by a post afterwards
CREATE TABLE IF NOT EXISTS reactions (
	id TEXT PRIMARY KEY,
	message_id TEXT,
	post_id TEXT,
	user_id TEXT NOT NULL,
	emoji TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reactions_message ON reactions(message_id);

CREATE TABLE IF NOT EXISTS attachments (
	id TEXT PRIMARY KEY,
	message_id TEXT,
	post_id TEXT,
	file_name TEXT NOT NULL,
	url TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_attachments_message ON attachments(message_id);

CREATE TABLE IF NOT EXISTS revisions (
	id TEXT PRIMARY KEY,
	message_id TEXT,
	post_id TEXT,
	old_body TEXT NOT NULL,
	new_body TEXT NOT NULL,
	edited_by TEXT NOT NULL,
	edited_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_revisions_message ON revisions(message_id);

CREATE TABLE IF NOT EXISTS webhook_events (
	id TEXT PRIMARY KEY,
	message_id TEXT,
	post_id TEXT,
	external_id TEXT NOT NULL,
	payload TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_webhook_events_message ON webhook_events(message_id);

-- Archive records (one per archive attempt)
CREATE TABLE IF NOT EXISTS archives (
	id TEXT PRIMARY KEY,
	channel_id TEXT NOT NULL,
	initiated_by TEXT NOT NULL,
	existing_topic_id TEXT,
	topic_title TEXT,
	topic_category TEXT,
	topic_tags TEXT,
	destination_topic_id TEXT,
	topic_created INTEGER NOT NULL DEFAULT 0,
	total_messages INTEGER NOT NULL,
	archived_messages INTEGER NOT NULL DEFAULT 0,
	last_error TEXT,
	state TEXT NOT NULL CHECK(state IN ('pending', 'archiving', 'complete', 'failed')) DEFAULT 'pending',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (channel_id) REFERENCES channels(id)
);

CREATE INDEX IF NOT EXISTS idx_archives_channel ON archives(channel_id);

-- Private notices sent to initiating actors
CREATE TABLE IF NOT EXISTS notices (
	id TEXT PRIMARY KEY,
	sender TEXT NOT NULL,
	recipient TEXT NOT NULL,
	subject TEXT NOT NULL,
	body TEXT NOT NULL,
	read INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notices_recipient ON notices(recipient, read);
`

// GetSchemaSQL returns the authoritative schema SQL. Tests must use this
// instead of hardcoding CREATE TABLE statements.
func GetSchemaSQL() string {
	return SchemaSQL
}
