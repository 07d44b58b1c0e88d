package models

// ReportFormat enumerates supported export formats.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportFile is a rendered document ready to be sent as an attachment.
type ReportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}
