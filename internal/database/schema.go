package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema lists the DDL statements executed at startup.  Statements are
// idempotent (CREATE TABLE IF NOT EXISTS) and ordered so that referenced
// tables exist before their referencing foreign keys.
//
// Cascade rules mirror the ownership model: children of a user or a book
// (configuration rows, join rows, categories, tags, tallies) are removed
// together with their aggregate.  tally.category_id and tally.account_id
// deliberately do NOT cascade; a category or account still referenced by
// tallies must not be silently deletable.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS user (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		mobile VARCHAR(11) NULL,
		mail VARCHAR(64) NULL,
		wx_openid VARCHAR(64) NULL,
		password VARCHAR(64) NULL,
		nick_name VARCHAR(16) NOT NULL,
		avatar_url TEXT NULL,
		motto VARCHAR(255) NULL,
		vip_level SMALLINT NOT NULL DEFAULT 1,
		state SMALLINT NOT NULL DEFAULT 0,
		created DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_user_mobile (mobile),
		UNIQUE KEY uq_user_mail (mail),
		UNIQUE KEY uq_user_wx_openid (wx_openid)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS user_configure (
		user_id BIGINT UNSIGNED NOT NULL PRIMARY KEY,
		current_book_id BIGINT UNSIGNED NOT NULL DEFAULT 0,
		CONSTRAINT fk_user_configure_user FOREIGN KEY (user_id)
			REFERENCES user (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS application (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		app_id VARCHAR(32) NOT NULL,
		app_name VARCHAR(16) NOT NULL,
		secret_key VARCHAR(64) NOT NULL,
		expirydate DATETIME NOT NULL,
		UNIQUE KEY uq_application_app_id (app_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS book (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(16) NOT NULL,
		icon VARCHAR(255) NULL,
		remark VARCHAR(255) NULL,
		state SMALLINT NOT NULL DEFAULT 0,
		created DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS book_configure (
		book_id BIGINT UNSIGNED NOT NULL PRIMARY KEY,
		budget DECIMAL(13,4) NOT NULL DEFAULT 0,
		period VARCHAR(32) NOT NULL DEFAULT 'month',
		CONSTRAINT fk_book_configure_book FOREIGN KEY (book_id)
			REFERENCES book (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS account (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(16) NOT NULL,
		icon VARCHAR(255) NULL,
		remark VARCHAR(255) NULL,
		user_id BIGINT UNSIGNED NOT NULL,
		CONSTRAINT fk_account_user FOREIGN KEY (user_id)
			REFERENCES user (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS category (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(16) NOT NULL,
		type SMALLINT NOT NULL DEFAULT 0,
		icon VARCHAR(255) NULL,
		remark VARCHAR(255) NULL,
		seq SMALLINT NOT NULL DEFAULT 0,
		pid BIGINT UNSIGNED NULL,
		CONSTRAINT fk_category_parent FOREIGN KEY (pid)
			REFERENCES category (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS tag (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(16) NOT NULL,
		remark VARCHAR(255) NULL,
		seq SMALLINT NOT NULL DEFAULT 0,
		pid BIGINT UNSIGNED NULL,
		CONSTRAINT fk_tag_parent FOREIGN KEY (pid)
			REFERENCES tag (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS tally (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		amount DECIMAL(13,4) NOT NULL DEFAULT 0,
		record_timestamp BIGINT NOT NULL,
		remark VARCHAR(255) NULL,
		book_id BIGINT UNSIGNED NOT NULL,
		category_id BIGINT UNSIGNED NOT NULL,
		account_id BIGINT UNSIGNED NULL,
		KEY idx_tally_record_timestamp (record_timestamp),
		CONSTRAINT fk_tally_book FOREIGN KEY (book_id)
			REFERENCES book (id) ON DELETE CASCADE,
		CONSTRAINT fk_tally_category FOREIGN KEY (category_id)
			REFERENCES category (id),
		CONSTRAINT fk_tally_account FOREIGN KEY (account_id)
			REFERENCES account (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS user_book (
		user_id BIGINT UNSIGNED NOT NULL,
		book_id BIGINT UNSIGNED NOT NULL,
		permission SMALLINT NOT NULL DEFAULT 4,
		PRIMARY KEY (user_id, book_id),
		CONSTRAINT fk_user_book_user FOREIGN KEY (user_id)
			REFERENCES user (id) ON DELETE CASCADE,
		CONSTRAINT fk_user_book_book FOREIGN KEY (book_id)
			REFERENCES book (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS book_account (
		book_id BIGINT UNSIGNED NOT NULL,
		account_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (book_id, account_id),
		CONSTRAINT fk_book_account_book FOREIGN KEY (book_id)
			REFERENCES book (id) ON DELETE CASCADE,
		CONSTRAINT fk_book_account_account FOREIGN KEY (account_id)
			REFERENCES account (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS book_category (
		book_id BIGINT UNSIGNED NOT NULL,
		category_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (book_id, category_id),
		CONSTRAINT fk_book_category_book FOREIGN KEY (book_id)
			REFERENCES book (id) ON DELETE CASCADE,
		CONSTRAINT fk_book_category_category FOREIGN KEY (category_id)
			REFERENCES category (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS book_tag (
		book_id BIGINT UNSIGNED NOT NULL,
		tag_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (book_id, tag_id),
		CONSTRAINT fk_book_tag_book FOREIGN KEY (book_id)
			REFERENCES book (id) ON DELETE CASCADE,
		CONSTRAINT fk_book_tag_tag FOREIGN KEY (tag_id)
			REFERENCES tag (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS tally_tag (
		tally_id BIGINT UNSIGNED NOT NULL,
		tag_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (tally_id, tag_id),
		CONSTRAINT fk_tally_tag_tally FOREIGN KEY (tally_id)
			REFERENCES tally (id) ON DELETE CASCADE,
		CONSTRAINT fk_tally_tag_tag FOREIGN KEY (tag_id)
			REFERENCES tag (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS permission (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NULL,
		module_name VARCHAR(16) NOT NULL,
		authority SMALLINT NOT NULL DEFAULT 4,
		remark VARCHAR(255) NULL,
		CONSTRAINT fk_permission_user FOREIGN KEY (user_id)
			REFERENCES user (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.  It is safe to call on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
