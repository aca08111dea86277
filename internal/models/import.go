package models

// LegacyCommentNDJSON is one line of a legacy comment dump. Older dumps only carry the
// boolean "aprobado" flag, newer ones the three-state "estado".
type LegacyCommentNDJSON struct {
	ID              string  `json:"id"`
	PostID          string  `json:"post_id"`
	UserID          string  `json:"usuario_id"`
	Author          string  `json:"autor"`
	Content         string  `json:"contenido"`
	CreatedAt       string  `json:"fecha_creacion"`
	Estado          string  `json:"estado,omitempty"`
	Aprobado        *bool   `json:"aprobado,omitempty"`
	MotivoRechazo   string  `json:"motivo_rechazo,omitempty"`
	ModeradoPor     *string `json:"moderado_por,omitempty"`
	FechaModeracion string  `json:"fecha_moderacion,omitempty"`
}

// ValidationError represents a single rejected import line
type ValidationError struct {
	Line    int         `json:"line"`
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ImportResult summarises a legacy import run
type ImportResult struct {
	TotalRecords    int               `json:"total_records"`
	SuccessfulCount int               `json:"successful"`
	FailedCount     int               `json:"failed"`
	Normalized      int               `json:"normalized"` // records whose state came from the legacy flag
	DurationMs      int64             `json:"duration_ms"`
	Errors          []ValidationError `json:"errors,omitempty"`
}
