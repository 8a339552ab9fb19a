package driver

const (
	FetchEdgesQuery = `
		MATCH (a:Word)-[r:RHYMES_WITH]->(b:Word)
		WHERE a.name IN $frontier OR b.name IN $frontier
		WITH a, r, b
		MATCH (s:Song {id: r.song_id})
		WHERE true%s
		RETURN a.name AS word,
			b.name AS rhymes_with,
			r.rhyme_type AS rhyme_type,
			r.song_id AS song_id,
			r.word_line AS word_line,
			r.rhymes_with_line AS rhymes_with_line,
			s.title AS title,
			s.artist AS artist,
			s.year AS year,
			s.billboard_rank AS billboard_rank,
			s.genre AS genre
		ORDER BY r.seq
	`

	GetLyricsQuery = `
		MATCH (s:Song {id: $id})
		RETURN s.lyrics AS lyrics
	`

	ListSongsQuery = `
		MATCH (s:Song)
		WHERE s.lyrics IS NOT NULL%s
		RETURN s.id AS id, s.title AS title, s.artist AS artist, s.year AS year,
			s.billboard_rank AS billboard_rank, s.genre AS genre, s.lyrics AS lyrics
		ORDER BY s.year DESC, s.billboard_rank
		LIMIT $limit
	`

	FacetsQuery = `
		MATCH (s:Song)
		RETURN collect(DISTINCT s.genre) AS genres,
			collect(DISTINCT s.year) AS years,
			collect(DISTINCT s.artist) AS artists
	`

	SaveSongQuery = `
		MERGE (s:Song {id: $id})
		SET s.title = $title,
			s.artist = $artist,
			s.year = $year,
			s.billboard_rank = $billboard_rank,
			s.genre = $genre,
			s.lyrics = $lyrics
		RETURN s.id AS id
	`

	// seq keeps query results in insertion order.
	SaveRhymePairQuery = `
		MERGE (a:Word {name: $word})
		MERGE (b:Word {name: $rhymes_with})
		CREATE (a)-[r:RHYMES_WITH {
			rhyme_type: $rhyme_type,
			song_id: $song_id,
			word_line: $word_line,
			rhymes_with_line: $rhymes_with_line,
			seq: $seq
		}]->(b)
		RETURN r.song_id AS song_id
	`
)

// noLimit stands in for an unbounded song scan.
const noLimit = 1 << 30
