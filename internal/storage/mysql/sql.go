package mysql

// Keyed by the case-folded query, so "Montebello" and "montebello " share a row.
const insertMissSQL = `
INSERT INTO lookup_misses (query, reason)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE
  hits      = hits + 1,
  reason    = VALUES(reason),
  last_seen = CURRENT_TIMESTAMP
`

const topMissesSQL = `
SELECT query, hits, first_seen, last_seen
FROM lookup_misses
ORDER BY hits DESC, last_seen DESC
LIMIT ?
`
