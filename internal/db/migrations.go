package db

import "database/sql"

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	_, err := db.Exec(defaultSettings)
	return err
}

// Counter tables carry no foreign key to ads: deleting an ad leaves its
// history in place and category-filtered reports drop it through the join.
const schema = `
CREATE TABLE IF NOT EXISTS ads (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    img_url            TEXT     NOT NULL,
    link               TEXT     NOT NULL,
    is_main            INTEGER  NOT NULL DEFAULT 0,
    status             TEXT     NOT NULL DEFAULT 'active',
    x_redirect_enabled INTEGER  NOT NULL DEFAULT 1,
    created_at         DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ads_selection ON ads(is_main, status);
CREATE INDEX IF NOT EXISTS idx_ads_created_at ON ads(created_at);

CREATE TABLE IF NOT EXISTS settings (
    k TEXT PRIMARY KEY,
    v TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS domain_blacklist (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    domain     TEXT     NOT NULL UNIQUE,
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS page_views (
    day   TEXT    PRIMARY KEY,
    count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS ad_clicks (
    id     INTEGER PRIMARY KEY AUTOINCREMENT,
    ad_id  INTEGER NOT NULL,
    day    TEXT    NOT NULL,
    clicks INTEGER NOT NULL DEFAULT 0,
    UNIQUE(ad_id, day)
);

CREATE INDEX IF NOT EXISTS idx_ad_clicks_day ON ad_clicks(day);

CREATE TABLE IF NOT EXISTS ad_clicks_by_domain_ip (
    id     INTEGER PRIMARY KEY AUTOINCREMENT,
    ad_id  INTEGER NOT NULL,
    day    TEXT    NOT NULL,
    domain TEXT    NOT NULL,
    ip     TEXT    NOT NULL,
    clicks INTEGER NOT NULL DEFAULT 0,
    UNIQUE(ad_id, day, domain, ip)
);

CREATE INDEX IF NOT EXISTS idx_clicks_domain_ip_day ON ad_clicks_by_domain_ip(day);

CREATE TABLE IF NOT EXISTS visitor_views_by_domain_ip (
    id     INTEGER PRIMARY KEY AUTOINCREMENT,
    day    TEXT    NOT NULL,
    domain TEXT    NOT NULL,
    ip     TEXT    NOT NULL,
    visits INTEGER NOT NULL DEFAULT 0,
    UNIQUE(day, domain, ip)
);
`

const defaultSettings = `
INSERT OR IGNORE INTO settings (k, v) VALUES ('ads_global_enabled', 'true');
INSERT OR IGNORE INTO settings (k, v) VALUES ('ads_main_enabled', 'true');
INSERT OR IGNORE INTO settings (k, v) VALUES ('ads_secondary_enabled', 'true');
INSERT OR IGNORE INTO settings (k, v) VALUES ('main_ad_once_per_day', 'false');
INSERT OR IGNORE INTO settings (k, v) VALUES ('secondary_ad_once_per_day', 'false');
`
