// journal/schema.go
package journal

// Schema is the SQLite ledger schema. Amounts are exact decimal strings.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	user_id TEXT PRIMARY KEY,
	portfolio_id TEXT NOT NULL UNIQUE,
	cash_balance TEXT NOT NULL,
	savings_balance TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS holdings (
	id TEXT PRIMARY KEY,
	portfolio_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	company_name TEXT NOT NULL,
	shares TEXT NOT NULL,
	avg_price TEXT NOT NULL,
	current_price TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE (portfolio_id, symbol)
);

CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	portfolio_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	company_name TEXT NOT NULL,
	type TEXT NOT NULL CHECK (type IN ('buy', 'sell')),
	shares TEXT NOT NULL,
	price TEXT NOT NULL,
	total TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_portfolio ON transactions(portfolio_id, created_at);

CREATE TABLE IF NOT EXISTS fund_transfers (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	transfer_type TEXT NOT NULL,
	amount TEXT NOT NULL,
	from_account TEXT NOT NULL,
	to_account TEXT NOT NULL,
	description TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fund_transfers_user ON fund_transfers(user_id, created_at);

CREATE TABLE IF NOT EXISTS fixed_deposits (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	amount TEXT NOT NULL,
	tenure_months INTEGER NOT NULL,
	interest_rate TEXT NOT NULL,
	maturity_amount TEXT NOT NULL,
	maturity_date DATETIME NOT NULL,
	status TEXT NOT NULL CHECK (status IN ('active', 'matured')),
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fixed_deposits_user ON fixed_deposits(user_id);
CREATE INDEX IF NOT EXISTS idx_fixed_deposits_status ON fixed_deposits(status, maturity_date);

CREATE TABLE IF NOT EXISTS instruments (
	symbol TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	sector TEXT NOT NULL,
	current_price TEXT NOT NULL,
	price_change TEXT NOT NULL,
	price_change_percent TEXT NOT NULL,
	is_active BOOLEAN NOT NULL,
	updated_at DATETIME NOT NULL
);
`
