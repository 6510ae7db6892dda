package service

import (
	"context"
	"errors"
	"testing"

	"compress-bot/pkg/errno"
)

type fakeAdminRepo struct {
	members map[int64]bool
	err     error
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{members: map[int64]bool{}}
}

func (f *fakeAdminRepo) Add(_ context.Context, userID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.members[userID] {
		return false, nil
	}
	f.members[userID] = true
	return true, nil
}

func (f *fakeAdminRepo) Remove(_ context.Context, userID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if !f.members[userID] {
		return false, nil
	}
	delete(f.members, userID)
	return true, nil
}

func (f *fakeAdminRepo) List(context.Context) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]int64, 0, len(f.members))
	for id := range f.members {
		out = append(out, id)
	}
	return out, nil
}

func (f *fakeAdminRepo) IsMember(_ context.Context, userID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.members[userID], nil
}

const testOwnerID int64 = 99

func TestAdminOwnerAlwaysPrivileged(t *testing.T) {
	repo := newFakeAdminRepo()
	repo.err = errors.New("store down")
	svc := NewAdminService(repo, testOwnerID)

	// Owner privilege must not depend on the store at all.
	if !svc.IsPrivileged(context.Background(), testOwnerID) {
		t.Error("owner not privileged while store is down")
	}
	if svc.IsPrivileged(context.Background(), 42) {
		t.Error("non-admin privileged while store is down")
	}
}

func TestAdminOwnerImmutable(t *testing.T) {
	svc := NewAdminService(newFakeAdminRepo(), testOwnerID)

	if err := svc.Add(context.Background(), testOwnerID); !errors.Is(err, errno.ErrOwnerImmutable) {
		t.Errorf("Add(owner) error = %v, want ErrOwnerImmutable", err)
	}
	if err := svc.Remove(context.Background(), testOwnerID); !errors.Is(err, errno.ErrOwnerImmutable) {
		t.Errorf("Remove(owner) error = %v, want ErrOwnerImmutable", err)
	}
}

func TestAdminAddRemoveLifecycle(t *testing.T) {
	repo := newFakeAdminRepo()
	svc := NewAdminService(repo, testOwnerID)
	ctx := context.Background()

	if err := svc.Add(ctx, 42); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if !svc.IsPrivileged(ctx, 42) {
		t.Error("added admin not privileged")
	}
	if err := svc.Add(ctx, 42); !errors.Is(err, errno.ErrAdminExists) {
		t.Errorf("duplicate Add() error = %v, want ErrAdminExists", err)
	}

	if err := svc.Remove(ctx, 42); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if svc.IsPrivileged(ctx, 42) {
		t.Error("removed admin still privileged")
	}
	if err := svc.Remove(ctx, 42); !errors.Is(err, errno.ErrAdminNotFound) {
		t.Errorf("second Remove() error = %v, want ErrAdminNotFound", err)
	}
}
