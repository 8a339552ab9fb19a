package driver

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS songs (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	artist TEXT NOT NULL,
	year INTEGER,
	billboard_rank INTEGER,
	genre TEXT,
	lyrics_raw TEXT
);

CREATE TABLE IF NOT EXISTS rhyme_pairs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	song_id TEXT NOT NULL REFERENCES songs(id),
	word TEXT NOT NULL,
	rhymes_with TEXT NOT NULL,
	rhyme_type TEXT NOT NULL,
	word_line INTEGER NOT NULL DEFAULT 0,
	rhymes_with_line INTEGER NOT NULL DEFAULT 0
);
`

var sqliteIndices = []string{
	`CREATE INDEX IF NOT EXISTS idx_rhyme_pairs_word ON rhyme_pairs(lower(word))`,
	`CREATE INDEX IF NOT EXISTS idx_rhyme_pairs_rhymes_with ON rhyme_pairs(lower(rhymes_with))`,
	`CREATE INDEX IF NOT EXISTS idx_rhyme_pairs_song ON rhyme_pairs(song_id)`,
	`CREATE INDEX IF NOT EXISTS idx_songs_year ON songs(year)`,
}

const edgeSelect = `
SELECT rp.word, rp.rhymes_with, rp.rhyme_type, rp.song_id, rp.word_line, rp.rhymes_with_line,
	s.title, s.artist, s.year, s.billboard_rank, s.genre
FROM rhyme_pairs rp
JOIN songs s ON s.id = rp.song_id
WHERE (lower(rp.word) IN (%[1]s) OR lower(rp.rhymes_with) IN (%[1]s))%[2]s
ORDER BY rp.id`

const songSelect = `
SELECT s.id, s.title, s.artist, s.year, s.billboard_rank, s.genre, s.lyrics_raw
FROM songs s
WHERE s.lyrics_raw IS NOT NULL%s
ORDER BY s.year DESC, s.billboard_rank
LIMIT ?`
