package models

// UploadedDocument is a résumé received in a request. It lives on disk at
// FilePath only until its text has been extracted.
type UploadedDocument struct {
	FilePath         string
	OriginalFileName string
	MimeType         string
	Extension        string
	SizeBytes        int64
}

// ExtractedText is the trimmed plain text pulled out of an uploaded document.
type ExtractedText struct {
	Content   string
	Format    string
	PageCount int
}
