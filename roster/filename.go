package roster

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Placeholders used when a file name does not carry application metadata.
const (
	UnknownNumber       = "Number"
	UnknownOrganization = "Organization"
)

// AppInfo is the application number and organisation encoded in a source
// file name such as "636. ООО Ромашка.docx".
type AppInfo struct {
	Number       string
	Organization string
}

var appName = regexp.MustCompile(`^(\d+)\.\s*(.+)$`)

// ParseFileName extracts AppInfo from the base name of path.
func ParseFileName(path string) AppInfo {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	m := appName.FindStringSubmatch(base)
	if m == nil {
		return AppInfo{Number: UnknownNumber, Organization: UnknownOrganization}
	}
	return AppInfo{Number: strings.TrimSpace(m[1]), Organization: strings.TrimSpace(m[2])}
}

// Override returns info with non-blank number and organization taking
// precedence over the parsed values.
func (info AppInfo) Override(number, organization string) AppInfo {
	if s := strings.TrimSpace(number); s != "" {
		info.Number = s
	}
	if s := strings.TrimSpace(organization); s != "" {
		info.Organization = s
	}
	return info
}
