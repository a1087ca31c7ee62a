package postgres

// createSchemaSQL creates the e-commerce tables in foreign key order.
const createSchemaSQL = `
-- Users: customer accounts
CREATE TABLE users (
    user_id        BIGINT PRIMARY KEY,
    first_name     TEXT NOT NULL,
    last_name      TEXT NOT NULL,
    email          TEXT NOT NULL UNIQUE,
    phone          TEXT NOT NULL UNIQUE,
    signup_date    DATE NOT NULL,
    loyalty_status TEXT NOT NULL,
    country        TEXT NOT NULL
);

-- Products: catalog items
CREATE TABLE products (
    product_id BIGINT PRIMARY KEY,
    name       TEXT NOT NULL,
    category   TEXT NOT NULL,
    price      NUMERIC(10,2) NOT NULL CHECK (price >= 0),
    stock_qty  INTEGER NOT NULL,
    created_at DATE NOT NULL
);

-- Orders: order headers
CREATE TABLE orders (
    order_id         BIGINT PRIMARY KEY,
    user_id          BIGINT NOT NULL REFERENCES users(user_id),
    order_date       TIMESTAMP NOT NULL,
    status           TEXT NOT NULL,
    payment_method   TEXT NOT NULL,
    shipping_address TEXT NOT NULL,
    total_amount     NUMERIC(12,2) NOT NULL
);

-- Order items: order lines
CREATE TABLE order_items (
    order_item_id BIGINT PRIMARY KEY,
    order_id      BIGINT NOT NULL REFERENCES orders(order_id),
    product_id    BIGINT NOT NULL REFERENCES products(product_id),
    quantity      INTEGER NOT NULL CHECK (quantity >= 1),
    unit_price    NUMERIC(10,2) NOT NULL,
    line_total    NUMERIC(12,2) NOT NULL
);

-- Payments: one per order
CREATE TABLE payments (
    payment_id     BIGINT PRIMARY KEY,
    order_id       BIGINT NOT NULL REFERENCES orders(order_id),
    payment_method TEXT NOT NULL,
    amount         NUMERIC(12,2) NOT NULL,
    payment_status TEXT NOT NULL,
    payment_date   TIMESTAMP NOT NULL,
    transaction_id TEXT NOT NULL UNIQUE
);

CREATE INDEX idx_orders_user ON orders(user_id);
CREATE INDEX idx_order_items_order ON order_items(order_id);
CREATE INDEX idx_order_items_product ON order_items(product_id);
CREATE INDEX idx_payments_order ON payments(order_id);
`

// dropSchemaSQL drops the e-commerce tables in reverse foreign key order.
const dropSchemaSQL = `
DROP TABLE IF EXISTS payments CASCADE;
DROP TABLE IF EXISTS order_items CASCADE;
DROP TABLE IF EXISTS orders CASCADE;
DROP TABLE IF EXISTS products CASCADE;
DROP TABLE IF EXISTS users CASCADE;
`

// createMetadataTableSQL creates the metadata table if it doesn't exist.
const createMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS pipeline_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`
