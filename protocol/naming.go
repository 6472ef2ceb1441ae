package protocol

import (
	"fmt"
	"regexp"
	"strings"
)

// unsafeChars keeps Unicode whitespace: \s alone is ASCII only.
var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}_\s\p{Z}\x{85}-]`)

// SanitizeOrg strips everything but letters, digits, underscores, whitespace
// and hyphens, trims the result and turns ASCII spaces into underscores.
// Other whitespace, such as a no-break space, is kept as is.
func SanitizeOrg(org string) string {
	s := unsafeChars.ReplaceAllString(org, "")
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
}

var pathSeparators = strings.NewReplacer("/", "_", `\`, "_")

// ProtocolName is the file name of the protocol for program code.
func ProtocolName(number, org, code string) string {
	return fmt.Sprintf("Protocol_%s_%s_Program_%s.docx", pathSeparators.Replace(number), SanitizeOrg(org), code)
}

// AttendanceName is the file name of an attendance sheet. An empty code names
// the batch-wide sheet.
func AttendanceName(number, org, code string) string {
	if code == "" {
		return fmt.Sprintf("AttendanceList_%s_%s.docx", pathSeparators.Replace(number), SanitizeOrg(org))
	}
	return fmt.Sprintf("AttendanceList_%s_%s_Program_%s.docx", pathSeparators.Replace(number), SanitizeOrg(org), code)
}

// ConsentName is the file name of the consent form.
func ConsentName(number, org string) string {
	return fmt.Sprintf("Consent_%s_%s.docx", pathSeparators.Replace(number), SanitizeOrg(org))
}

func attendanceLabel(number, org, code string) string {
	if code == "" {
		return fmt.Sprintf("Группа %s_%s", number, SanitizeOrg(org))
	}
	return fmt.Sprintf("Группа %s_%s_Программа_%s", number, SanitizeOrg(org), code)
}

func consentLabel(org string) string {
	return "_________" + SanitizeOrg(org) + "_________"
}
