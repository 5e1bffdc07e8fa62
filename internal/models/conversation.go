package models

// ConversationTurn is one persisted question/answer exchange. Turns are append-only.
type ConversationTurn struct {
	RegistrationID string `db:"registration_id" json:"-"`
	Timestamp      string `db:"created_at" json:"data"`
	Question       string `db:"question" json:"pergunta"`
	Answer         string `db:"answer" json:"resposta"`
}

// ExportFormat is a downloadable rendering of the conversation log.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)
