package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/backoffice/internal/core/domain"
	"github.com/samirrijal/backoffice/internal/core/usecases"
)

func TestUserService_Save(t *testing.T) {
	repo := newMockUserRepo(domain.User{ID: "u1", Name: "Ane", Email: "ane@example.com", Role: domain.RoleAdmin, Active: true})
	cache := newMemCache()
	pub := &recordingPublisher{}
	svc := usecases.NewUserService(repo, cache, pub)
	ctx := context.Background()

	u := &domain.User{Name: "Jon", Email: " Jon@Example.com ", Permissions: domain.Permissions{domain.ResourceSEO: domain.ViewOnly}, Active: true}
	if err := svc.Save(ctx, u); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID == "" || u.Email != "jon@example.com" || u.Role != domain.RoleEditor {
		t.Errorf("unexpected user after save: %+v", u)
	}
	if len(cache.deletes) != 1 || cache.deletes[0] != usecases.PermissionKey(u.ID) {
		t.Errorf("expected permission cache eviction, got %v", cache.deletes)
	}
	if len(pub.events) != 1 || pub.events[0].Collection != domain.CollectionUsers {
		t.Errorf("expected users event, got %+v", pub.events)
	}

	dup := &domain.User{Name: "Other", Email: "ANE@example.com"}
	if err := svc.Save(ctx, dup); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected conflict, got %v", err)
	}

	// updating a user keeps its own email
	existing := &domain.User{ID: "u1", Name: "Ane E.", Email: "ane@example.com", Role: domain.RoleAdmin}
	if err := svc.Save(ctx, existing); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestUserService_Save_Validation(t *testing.T) {
	svc := usecases.NewUserService(newMockUserRepo(), nil, nil)
	cases := map[string]*domain.User{
		"no name":          {Email: "a@b.io"},
		"bad email":        {Name: "A", Email: "nope"},
		"bad role":         {Name: "A", Email: "a@b.io", Role: "root"},
		"unknown resource": {Name: "A", Email: "a@b.io", Permissions: domain.Permissions{"billing": domain.FullAccess}},
	}
	for name, u := range cases {
		if err := svc.Save(context.Background(), u); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestPermissionService_Permissions(t *testing.T) {
	repo := newMockUserRepo(
		domain.User{ID: "admin", Role: domain.RoleAdmin, Active: true},
		domain.User{ID: "ed", Role: domain.RoleEditor, Active: true, Permissions: domain.Permissions{domain.ResourceProducts: domain.FullAccess}},
		domain.User{ID: "gone", Role: domain.RoleAdmin, Active: false},
	)
	cache := newMemCache()
	svc := usecases.NewPermissionService(repo, cache, 0)
	ctx := context.Background()

	perms, err := svc.Permissions(ctx, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !perms.Level(domain.ResourceUsers).CanEdit() {
		t.Error("admin must edit users")
	}

	perms, _ = svc.Permissions(ctx, "ed")
	if perms.Level(domain.ResourceProducts) != domain.FullAccess || perms.Level(domain.ResourceSEO) != domain.NoAccess {
		t.Errorf("unexpected editor permissions: %v", perms)
	}

	// second call is served from cache
	calls := repo.getCalls
	_, _ = svc.Permissions(ctx, "ed")
	if repo.getCalls != calls {
		t.Error("expected cached permissions")
	}

	perms, _ = svc.Permissions(ctx, "gone")
	if len(perms) != 0 {
		t.Errorf("inactive user must have no permissions, got %v", perms)
	}

	perms, err = svc.Permissions(ctx, "unknown")
	if err != nil || len(perms) != 0 {
		t.Errorf("unknown user must resolve to no permissions, got %v %v", perms, err)
	}
}
