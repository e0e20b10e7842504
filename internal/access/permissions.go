// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package access

// Default role names, lowest to highest.
const (
	RoleGuest     = "guest"
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Grant groups. Each role on the ladder holds its own group plus every
// group below it.
var (
	userGrants = []string{
		"cmdtree.user.*",
		"cmdtree.self.$self",
	}
	moderatorGrants = []string{
		"cmdtree.admin.wall",
		"cmdtree.admin.boot",
		"cmdtree.ratelimit.bypass",
	}
	adminGrants = []string{"**"}
)

// ladder orders the default roles. Guests get nothing.
var ladder = []struct {
	role   string
	grants []string
}{
	{RoleGuest, nil},
	{RoleUser, userGrants},
	{RoleModerator, moderatorGrants},
	{RoleAdmin, adminGrants},
}

// DefaultRoles returns a fresh copy of the default role table.
func DefaultRoles() map[string][]string {
	roles := make(map[string][]string, len(ladder))
	var held []string
	for _, step := range ladder {
		held = append(held, step.grants...)
		roles[step.role] = append([]string{}, held...)
	}
	return roles
}
