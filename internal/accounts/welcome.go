package accounts

import (
	"fmt"
	"strings"
)

// roleDescriptions drives the role-specific part of the welcome greeting.
var roleDescriptions = map[Role]string{
	RoleAdmin:  "You can manage all system activities as an Admin.",
	RoleUser:   "You can track and submit your activities as a User.",
	RoleViewer: "You have read-only access as a Viewer.",
}

// WelcomeMessage builds the greeting returned after login and on userinfo.
// The first whitespace-separated token of the name is used as given. Unknown
// roles and empty names degrade to the generic greeting; this function
// never fails.
func WelcomeMessage(name, role string) string {
	desc, known := roleDescriptions[Role(strings.ToUpper(role))]
	tokens := strings.Fields(name)
	if !known || len(tokens) == 0 {
		return "Welcome!"
	}
	return fmt.Sprintf("Welcome %s, %s", tokens[0], desc)
}
