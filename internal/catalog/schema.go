package catalog

// migrations are applied in lexicographic order and must be idempotent,
// per spec §3's SchemaVersion invariant. Each entry's key is its
// version string; CREATE TABLE/INDEX use IF NOT EXISTS so re-running a
// migration against an already-migrated store is a no-op.
var migrations = []struct {
	version string
	stmts   []string
}{
	{
		version: "0001_initial",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS schema_version (
				version TEXT PRIMARY KEY,
				applied_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS scan_runs (
				id TEXT PRIMARY KEY,
				start_timestamp TEXT NOT NULL,
				end_timestamp TEXT,
				status TEXT NOT NULL,
				total_discovered INTEGER NOT NULL DEFAULT 0,
				media_discovered INTEGER NOT NULL DEFAULT 0,
				sidecar_discovered INTEGER NOT NULL DEFAULT 0,
				processed INTEGER NOT NULL DEFAULT 0,
				new_count INTEGER NOT NULL DEFAULT 0,
				unchanged_count INTEGER NOT NULL DEFAULT 0,
				changed_count INTEGER NOT NULL DEFAULT 0,
				missing_count INTEGER NOT NULL DEFAULT 0,
				error_count INTEGER NOT NULL DEFAULT 0,
				inconsistent_count INTEGER NOT NULL DEFAULT 0,
				albums_total INTEGER NOT NULL DEFAULT 0,
				bytes_processed INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE TABLE IF NOT EXISTS albums (
				id TEXT PRIMARY KEY,
				album_folder_path TEXT NOT NULL,
				title TEXT,
				description TEXT,
				creation_timestamp TEXT,
				access_level TEXT,
				status TEXT NOT NULL,
				first_seen_timestamp TEXT NOT NULL,
				last_seen_timestamp TEXT NOT NULL,
				scan_run_id TEXT NOT NULL
			)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_albums_folder_path ON albums(album_folder_path)`,
			`CREATE TABLE IF NOT EXISTS media_items (
				id TEXT PRIMARY KEY,
				relative_path TEXT NOT NULL,
				album_id TEXT NOT NULL,
				mime_type TEXT,
				file_size INTEGER NOT NULL,
				crc32 TEXT NOT NULL,
				content_fingerprint TEXT NOT NULL,
				sidecar_fingerprint TEXT,
				width INTEGER,
				height INTEGER,
				duration_seconds REAL,
				frame_rate REAL,
				capture_timestamp TEXT,
				first_seen_timestamp TEXT NOT NULL,
				last_seen_timestamp TEXT NOT NULL,
				scan_run_id TEXT NOT NULL,
				status TEXT NOT NULL,
				original_media_item_id TEXT,
				live_photo_pair_id TEXT,
				exif_make TEXT,
				exif_model TEXT,
				exif_lens_model TEXT,
				exif_focal_length_mm REAL,
				exif_aperture REAL,
				exif_exposure_time_seconds REAL,
				exif_iso INTEGER,
				exif_orientation INTEGER,
				exif_gps_latitude REAL,
				exif_gps_longitude REAL,
				json_title TEXT,
				json_description TEXT,
				json_photo_taken_time TEXT,
				json_latitude REAL,
				json_longitude REAL,
				json_altitude REAL,
				json_archived INTEGER NOT NULL DEFAULT 0,
				json_trashed INTEGER NOT NULL DEFAULT 0,
				json_favorited INTEGER NOT NULL DEFAULT 0,
				json_partner_shared INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_media_items_relative_path ON media_items(relative_path)`,
			`CREATE INDEX IF NOT EXISTS idx_media_items_scan_run_id ON media_items(scan_run_id)`,
			`CREATE INDEX IF NOT EXISTS idx_media_items_status ON media_items(status)`,
			`CREATE INDEX IF NOT EXISTS idx_media_items_size_crc32 ON media_items(file_size, crc32)`,
			`CREATE INDEX IF NOT EXISTS idx_media_items_album_capture ON media_items(album_id, capture_timestamp)`,
			`CREATE INDEX IF NOT EXISTS idx_media_items_content_fingerprint ON media_items(content_fingerprint)`,
			`CREATE INDEX IF NOT EXISTS idx_media_items_original_media_item_id ON media_items(original_media_item_id)`,
			`CREATE INDEX IF NOT EXISTS idx_media_items_live_photo_pair_id ON media_items(live_photo_pair_id)`,
			`CREATE TABLE IF NOT EXISTS people (
				id TEXT PRIMARY KEY,
				person_name TEXT NOT NULL
			)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_people_name ON people(person_name)`,
			`CREATE TABLE IF NOT EXISTS people_tags (
				media_item_id TEXT NOT NULL,
				person_id TEXT NOT NULL,
				tag_order INTEGER NOT NULL
			)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_people_tags_media_person ON people_tags(media_item_id, person_id)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_people_tags_media_order ON people_tags(media_item_id, tag_order)`,
			`CREATE TABLE IF NOT EXISTS processing_errors (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				scan_run_id TEXT NOT NULL,
				relative_path TEXT NOT NULL,
				error_type TEXT NOT NULL,
				error_category TEXT NOT NULL,
				message TEXT NOT NULL,
				timestamp TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_processing_errors_scan_run_id ON processing_errors(scan_run_id)`,
			`CREATE INDEX IF NOT EXISTS idx_processing_errors_category ON processing_errors(error_category)`,
		},
	},
}

const currentSchemaVersion = "0001_initial"
