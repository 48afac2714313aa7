package database

import (
	"context"
	"database/sql"
)

// schema contains the idempotent DDL for the four application tables.
// The unique keys are load-bearing: username/email uniqueness and the
// one-like-per-(user,post) rule are enforced here, not by the
// check-then-insert code paths, so concurrent requests cannot slip a
// duplicate row in between a check and an insert.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		username      VARCHAR(50)  NOT NULL,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(100) NOT NULL,
		bio           TEXT         NULL,
		avatar_url    VARCHAR(500) NULL,
		created_at    TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uniq_users_username (username),
		UNIQUE KEY uniq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS posts (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		title      VARCHAR(200) NOT NULL,
		content    TEXT         NOT NULL,
		image_url  VARCHAR(500) NULL,
		user_id    BIGINT UNSIGNED NULL,
		created_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_posts_user (user_id),
		KEY idx_posts_created (created_at),
		CONSTRAINT fk_posts_user FOREIGN KEY (user_id)
			REFERENCES users (id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS comments (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		content    TEXT            NOT NULL,
		user_id    BIGINT UNSIGNED NOT NULL,
		post_id    BIGINT UNSIGNED NOT NULL,
		created_at TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_comments_post (post_id),
		KEY idx_comments_user (user_id),
		CONSTRAINT fk_comments_user FOREIGN KEY (user_id)
			REFERENCES users (id) ON DELETE CASCADE,
		CONSTRAINT fk_comments_post FOREIGN KEY (post_id)
			REFERENCES posts (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS likes (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id    BIGINT UNSIGNED NOT NULL,
		post_id    BIGINT UNSIGNED NOT NULL,
		created_at TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uniq_likes_user_post (user_id, post_id),
		KEY idx_likes_post (post_id),
		CONSTRAINT fk_likes_user FOREIGN KEY (user_id)
			REFERENCES users (id) ON DELETE CASCADE,
		CONSTRAINT fk_likes_post FOREIGN KEY (post_id)
			REFERENCES posts (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the application tables when they do not exist.
// Statements run in dependency order so foreign keys resolve.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
