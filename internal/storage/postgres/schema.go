package postgres

// Schema is applied at Open. The primary keys on player_levels and
// player_level_prizes are the two uniqueness scopes the services rely
// on for insert-and-handle-conflict.
const schema = `
CREATE TABLE IF NOT EXISTS players (
    id TEXT PRIMARY KEY,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL
);

CREATE TABLE IF NOT EXISTS prizes (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS levels (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    level_order INT NOT NULL DEFAULT 0,
    prize_id TEXT NOT NULL REFERENCES prizes(id)
);

CREATE TABLE IF NOT EXISTS player_levels (
    player_id TEXT NOT NULL REFERENCES players(id),
    level_id TEXT NOT NULL REFERENCES levels(id),
    is_completed BOOLEAN NOT NULL DEFAULT FALSE,
    score INT NOT NULL DEFAULT 0 CHECK (score >= 0),
    started_at TIMESTAMP WITH TIME ZONE NOT NULL,
    completed TIMESTAMP WITH TIME ZONE,
    PRIMARY KEY (player_id, level_id)
);

CREATE TABLE IF NOT EXISTS player_level_prizes (
    player_id TEXT NOT NULL,
    level_id TEXT NOT NULL,
    prize_id TEXT NOT NULL REFERENCES prizes(id),
    received TIMESTAMP WITH TIME ZONE NOT NULL,
    PRIMARY KEY (player_id, level_id),
    FOREIGN KEY (player_id, level_id) REFERENCES player_levels(player_id, level_id)
);
`
