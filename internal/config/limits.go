package config

const (
	// MaxNoteTitleLength is the maximum length for note titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (titles should be short and descriptive).
	MaxNoteTitleLength = 255

	// MaxNoteBodyLength is the maximum length for note bodies.
	// Campaign notes are prose, not attachments; 1MB of markdown is
	// far beyond any realistic session log.
	MaxNoteBodyLength = 1 << 20

	// MaxTagsPerNote is the maximum number of tags on a single note.
	MaxTagsPerNote = 32

	// MaxTagLength is the maximum length of a single tag.
	MaxTagLength = 64

	// DefaultRevisionListLimit is the page size for revision history
	// when the caller does not specify one.
	DefaultRevisionListLimit = 50

	// BacklinkExcerptRadius is the number of characters kept on each
	// side of a reference token when building backlink excerpts.
	BacklinkExcerptRadius = 80
)
