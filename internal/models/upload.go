package models

// UploadedFile describes one stored raw upload. Immutable once written.
type UploadedFile struct {
	FileID       string `json:"file_id"`
	OriginalName string `json:"original_name"`
	Path         string `json:"file_path"`
	FileType     string `json:"file_type"` // Extension including the dot, e.g. ".csv"
}

// SupportedExtensions is the fixed set of accepted upload extensions
var SupportedExtensions = []string{".csv", ".xlsx", ".xls", ".json", ".sql"}

// IsSupportedExtension reports whether ext (including dot, lowercase) is accepted
func IsSupportedExtension(ext string) bool {
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
