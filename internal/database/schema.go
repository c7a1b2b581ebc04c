package database

import (
	"context"
	"database/sql"
)

// schema holds the startup DDL. Statements are idempotent so the server
// can run against a fresh or an existing database.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role          ENUM('FAN','BAND','ADMIN') NOT NULL DEFAULT 'FAN',
		is_active     TINYINT(1) NOT NULL DEFAULT 1,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users(id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS concerts (
		id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		band_id      BIGINT UNSIGNED NOT NULL,
		band_name    VARCHAR(255) NOT NULL,
		venue        VARCHAR(255) NOT NULL,
		starts_at    DATETIME NOT NULL,
		price_cents  INT UNSIGNED NOT NULL DEFAULT 0,
		capacity     INT UNSIGNED NOT NULL,
		tickets_sold INT UNSIGNED NOT NULL DEFAULT 0,
		status       ENUM('SCHEDULED','CANCELLED','SOLD_OUT') NOT NULL DEFAULT 'SCHEDULED',
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		CONSTRAINT fk_concert_band FOREIGN KEY (band_id) REFERENCES users(id),
		INDEX idx_concerts_starts_at (starts_at),
		INDEX idx_concerts_band (band_id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS tickets (
		id               BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		serial           CHAR(36) NOT NULL UNIQUE,
		concert_id       BIGINT UNSIGNED NOT NULL,
		buyer_id         BIGINT UNSIGNED NOT NULL,
		quantity         INT UNSIGNED NOT NULL,
		unit_price_cents INT UNSIGNED NOT NULL DEFAULT 0,
		status           ENUM('ISSUED','VOID') NOT NULL DEFAULT 'ISSUED',
		purchased_at     DATETIME NOT NULL,
		CONSTRAINT fk_ticket_concert FOREIGN KEY (concert_id) REFERENCES concerts(id),
		CONSTRAINT fk_ticket_buyer FOREIGN KEY (buyer_id) REFERENCES users(id),
		INDEX idx_tickets_buyer (buyer_id),
		INDEX idx_tickets_concert (concert_id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS favourites (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		concert_id BIGINT UNSIGNED NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_favourite (user_id, concert_id),
		CONSTRAINT fk_fav_user FOREIGN KEY (user_id) REFERENCES users(id),
		CONSTRAINT fk_fav_concert FOREIGN KEY (concert_id) REFERENCES concerts(id)
	) ENGINE=InnoDB`,
}

// EnsureSchema creates the tables on startup. The MySQL driver does not
// execute multi-statement scripts by default, so statements run one by
// one.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
