package messaging

// RoleGuardian is the lowest-trust tier; system messages are hidden from it.
// Other roles seen from the identity provider (educator, coordinator, admin)
// see everything.
const RoleGuardian = "guardian"

// VisibleTo is the single visibility predicate over {role, kind}.
// Every read path that exposes messages must go through it; policy lives
// here and nowhere else.
func VisibleTo(role string, kind MessageKind) bool {
	if kind == MessageKindSystem && role == RoleGuardian {
		return false
	}
	return true
}
