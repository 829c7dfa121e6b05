package migration

// getAllMigrations retourne toutes les migrations disponibles
func getAllMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_feedbacks_table",
			Up: `
				-- Retours terrain : durée réelle vs durée estimée
				CREATE TABLE feedbacks (
					id SERIAL PRIMARY KEY,
					feature TEXT NOT NULL,
					estimation DOUBLE PRECISION NOT NULL,
					real_duration DOUBLE PRECISION NOT NULL,
					nps INTEGER,
					comment TEXT NOT NULL DEFAULT '',
					date TEXT NOT NULL,
					CONSTRAINT chk_nps CHECK (nps IS NULL OR (nps >= 0 AND nps <= 10))
				);
			`,
			Down: `
				DROP TABLE IF EXISTS feedbacks;
			`,
		},
		{
			Version: 2,
			Name:    "create_feedbacks_indexes",
			Up: `
				-- La fenêtre de biais lit les derniers enregistrements
				CREATE INDEX idx_feedbacks_id_desc ON feedbacks(id DESC);
				CREATE INDEX idx_feedbacks_feature ON feedbacks(feature);
			`,
			Down: `
				DROP INDEX IF EXISTS idx_feedbacks_feature;
				DROP INDEX IF EXISTS idx_feedbacks_id_desc;
			`,
		},
	}
}
