package sqlite

// createSchemaSQL creates the e-commerce tables in foreign key order.
// Dates and timestamps are stored as ISO-8601 text.
const createSchemaSQL = `
CREATE TABLE users (
    user_id        INTEGER PRIMARY KEY,
    first_name     TEXT NOT NULL,
    last_name      TEXT NOT NULL,
    email          TEXT NOT NULL UNIQUE,
    phone          TEXT NOT NULL UNIQUE,
    signup_date    DATE NOT NULL,
    loyalty_status TEXT NOT NULL,
    country        TEXT NOT NULL
);

CREATE TABLE products (
    product_id INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    category   TEXT NOT NULL,
    price      NUMERIC NOT NULL CHECK (price >= 0),
    stock_qty  INTEGER NOT NULL,
    created_at DATE NOT NULL
);

CREATE TABLE orders (
    order_id         INTEGER PRIMARY KEY,
    user_id          INTEGER NOT NULL REFERENCES users(user_id),
    order_date       TIMESTAMP NOT NULL,
    status           TEXT NOT NULL,
    payment_method   TEXT NOT NULL,
    shipping_address TEXT NOT NULL,
    total_amount     NUMERIC NOT NULL
);

CREATE TABLE order_items (
    order_item_id INTEGER PRIMARY KEY,
    order_id      INTEGER NOT NULL REFERENCES orders(order_id),
    product_id    INTEGER NOT NULL REFERENCES products(product_id),
    quantity      INTEGER NOT NULL CHECK (quantity >= 1),
    unit_price    NUMERIC NOT NULL,
    line_total    NUMERIC NOT NULL
);

CREATE TABLE payments (
    payment_id     INTEGER PRIMARY KEY,
    order_id       INTEGER NOT NULL REFERENCES orders(order_id),
    payment_method TEXT NOT NULL,
    amount         NUMERIC NOT NULL,
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
DROP TABLE IF EXISTS payments;
DROP TABLE IF EXISTS order_items;
DROP TABLE IF EXISTS orders;
DROP TABLE IF EXISTS products;
DROP TABLE IF EXISTS users;
`

const createMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS pipeline_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`
