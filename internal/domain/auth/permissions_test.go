package auth

import "testing"

func TestRolePermissionsSubset(t *testing.T) {
	allowed := map[string]struct{}{}
	for _, perm := range DefaultPermissions {
		allowed[perm] = struct{}{}
	}

	for role, perms := range RolePermissions {
		if len(perms) == 0 {
			t.Fatalf("role %s has no permissions", role)
		}
		for _, perm := range perms {
			if _, ok := allowed[perm]; !ok {
				t.Fatalf("role %s has unknown permission %s", role, perm)
			}
		}
	}
}

func TestOnlyHRManagesTemplates(t *testing.T) {
	for role, perms := range RolePermissions {
		for _, perm := range perms {
			if perm == PermTemplatesManage && role != RoleHR {
				t.Fatalf("role %s must not manage templates", role)
			}
		}
	}
}
