package model

// ImportKind selects the entity family new records become.
type ImportKind string

const (
	KindItems       ImportKind = "items"
	KindExperiments ImportKind = "experiments"
)

func (k ImportKind) Valid() bool {
	return k == KindItems || k == KindExperiments
}

type AttachmentRef struct {
	Index    int    `json:"index"`
	RealName string `json:"real_name"`
	Comment  string `json:"comment"`
	// Path is the archive-relative location written by exporters that
	// address attachments explicitly. Empty means derive it from the record.
	Path string `json:"path"`
}

type ImportRecord struct {
	Position      int             `json:"position"`
	Title         string          `json:"title"`
	Body          string          `json:"body"`
	Date          string          `json:"date"`
	Tags          string          `json:"tags"`
	Category      string          `json:"category"`
	ElabID        string          `json:"elabid"`
	HasElabID     bool            `json:"-"`
	Uploads       []AttachmentRef `json:"uploads"`
	MissingFields []string        `json:"-"`
}

type ResolvedAttachment struct {
	AbsolutePath string
	DisplayName  string
	Comment      string
	Exists       bool
}

// Identity is the importing user and team supplied by the host.
type Identity struct {
	UserID string
	TeamID string
}

// ImportTarget says who or what new entities are attributed to.
// Items use CategoryID; experiments are owned by OwnerID.
type ImportTarget struct {
	CategoryID string
	OwnerID    string
}

// EntityRef is the handle of a freshly persisted entity.
type EntityRef struct {
	Kind   ImportKind `json:"kind"`
	ID     string     `json:"id"`
	TeamID string     `json:"team_id"`
	UserID string     `json:"user_id"`
}

type RecordFailure struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Reason   string `json:"reason"`
}

type ImportResult struct {
	ArchivePath        string          `json:"archive_path"`
	Kind               ImportKind      `json:"kind"`
	Inserted           int             `json:"inserted"`
	Entities           []EntityRef     `json:"entities"`
	Skipped            []RecordFailure `json:"skipped"`
	MissingAttachments []string        `json:"missing_attachments"`
}
