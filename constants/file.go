package constants

import "strings"

// FileType is the declared type of an uploaded document.
type FileType string

// Stable values (store these exact strings in DB).
const (
	FileTypePDF         FileType = "pdf"
	FileTypeSpreadsheet FileType = "spreadsheet"
	FileTypeCSV         FileType = "csv"
	FileTypeText        FileType = "text"
	FileTypeLog         FileType = "log"
	FileTypeLegacy      FileType = "legacy_spreadsheet"
)

// ExtToFileType maps a file extension to a declared FileType.
var ExtToFileType = map[string]FileType{
	"pdf":  FileTypePDF,
	"xlsx": FileTypeSpreadsheet,
	"xls":  FileTypeSpreadsheet,
	"csv":  FileTypeCSV,
	"txt":  FileTypeText,
	"log":  FileTypeLog,
}

// FileTypeToExt is the default extension per FileType, used when the original
// filename carries none.
var FileTypeToExt = map[FileType]string{
	FileTypePDF:         ".pdf",
	FileTypeSpreadsheet: ".xlsx",
	FileTypeCSV:         ".csv",
	FileTypeText:        ".txt",
	FileTypeLog:         ".log",
	FileTypeLegacy:      ".xlsx",
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// DetectFileType resolves the declared type from a filename, or "" when the
// extension is not recognized.
func DetectFileType(filename string) FileType {
	if i := strings.LastIndex(filename, "."); i >= 0 {
		return ExtToFileType[NormalizeExt(filename[i:])]
	}
	return ""
}
