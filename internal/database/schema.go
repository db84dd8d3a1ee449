package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema lists the CREATE TABLE statements in dependency order.  Foreign
// keys follow the entity rules: orders, items and payments cascade with
// their parent, products restrict category deletion, and order items keep
// their row (product_id NULL) when a product is removed.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		username      VARCHAR(20)  NOT NULL UNIQUE,
		email         VARCHAR(50)  NOT NULL UNIQUE,
		password      VARCHAR(255) NOT NULL,
		nickname      VARCHAR(50)  NOT NULL,
		avatar        VARCHAR(512) NOT NULL,
		role          VARCHAR(16)  NOT NULL DEFAULT 'user',
		gender        VARCHAR(16)  NOT NULL DEFAULT 'other',
		date_of_birth DATE NULL,
		creationtime  DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updatetime    DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS tokens (
		id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		token_hash   CHAR(64) NOT NULL UNIQUE,
		user_id      BIGINT UNSIGNED NOT NULL UNIQUE,
		expires_at   DATETIME(6) NULL,
		is_revoked   BOOLEAN NOT NULL DEFAULT FALSE,
		creationtime DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updatetime   DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
		CONSTRAINT fk_tokens_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS categories (
		id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name         VARCHAR(100) NOT NULL UNIQUE,
		creationtime DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updatetime   DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS products (
		id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name         VARCHAR(255) NOT NULL,
		description  TEXT NOT NULL,
		price        DECIMAL(10,2) NOT NULL,
		category_id  BIGINT UNSIGNED NOT NULL,
		creationtime DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updatetime   DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
		CONSTRAINT fk_products_category FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE RESTRICT
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS orders (
		id               BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id          BIGINT UNSIGNED NOT NULL,
		total_amount     DECIMAL(10,2) NOT NULL,
		status           VARCHAR(16) NOT NULL DEFAULT 'pending',
		shipping_address VARCHAR(512) NOT NULL,
		order_date       DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		creationtime     DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updatetime       DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
		CONSTRAINT fk_orders_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		order_id       BIGINT UNSIGNED NOT NULL,
		product_id     BIGINT UNSIGNED NULL,
		quantity       INT NOT NULL,
		price_at_order DECIMAL(10,2) NOT NULL,
		creationtime   DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updatetime     DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
		CONSTRAINT fk_items_order FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE,
		CONSTRAINT fk_items_product FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS payments (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		order_id       BIGINT UNSIGNED NOT NULL,
		amount         DECIMAL(10,2) NOT NULL,
		method         VARCHAR(32) NOT NULL,
		transaction_id VARCHAR(255) NULL UNIQUE,
		status         VARCHAR(16) NOT NULL DEFAULT 'pending',
		payment_date   DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		creationtime   DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updatetime     DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
		CONSTRAINT fk_payments_order FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.  Statements are idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
