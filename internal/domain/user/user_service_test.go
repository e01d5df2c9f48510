package user

import (
	"context"
	"testing"

	"github.com/cyrene-ai/cyrene-server/internal/domain/query"
	"github.com/cyrene-ai/cyrene-server/internal/utils/platformerrors"
)

type fakeRepo struct {
	users  map[uint]*User
	nextID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[uint]*User)}
}

func (r *fakeRepo) Create(_ context.Context, u *User) error {
	r.nextID++
	u.ID = r.nextID
	copied := *u
	r.users[u.ID] = &copied
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id uint) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (r *fakeRepo) FindByName(_ context.Context, name string) (*User, error) {
	for _, u := range r.users {
		if u.Name == name {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) Update(_ context.Context, u *User) error {
	copied := *u
	r.users[u.ID] = &copied
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id uint) error {
	delete(r.users, id)
	return nil
}

func (r *fakeRepo) List(_ context.Context, deleted bool, _ query.Pagination) ([]*User, error) {
	var out []*User
	for _, u := range r.users {
		if u.IsDeleted == deleted {
			copied := *u
			out = append(out, &copied)
		}
	}
	return out, nil
}

// plainHasher keeps passwords readable so tests can assert on them.
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (plainHasher) Compare(hash, plain string) bool   { return hash == "hashed:"+plain }

func newUserService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo, plainHasher{}), repo
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, _ := newUserService()
	u, err := svc.Register(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID == 0 || u.PasswordHash == "pw" {
		t.Fatalf("expected assigned id and hashed password, got %+v", u)
	}

	got, err := svc.Authenticate(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("expected user %d, got %d", u.ID, got.ID)
	}

	_, err = svc.Authenticate(context.Background(), "alice", "wrong")
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRegisterDuplicateName(t *testing.T) {
	svc, _ := newUserService()
	if _, err := svc.Register(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.Register(context.Background(), "alice", "other")
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAuthenticateDeletedLooksLikeBadCredentials(t *testing.T) {
	svc, _ := newUserService()
	u, err := svc.Register(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.SoftDelete(context.Background(), u.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Authenticate(context.Background(), "alice", "pw")
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized) {
		t.Fatalf("deleted account must read as bad credentials, got %v", err)
	}
}

func TestAuthenticateBannedIsForbidden(t *testing.T) {
	svc, _ := newUserService()
	u, err := svc.Register(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Ban(context.Background(), u.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Authenticate(context.Background(), "alice", "pw")
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestHardDeleteRequiresSoftDelete(t *testing.T) {
	svc, repo := newUserService()
	u, err := svc.Register(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = svc.HardDelete(context.Background(), u.ID)
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict) {
		t.Fatalf("expected conflict before soft delete, got %v", err)
	}

	if err := svc.SoftDelete(context.Background(), u.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.HardDelete(context.Background(), u.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := repo.users[u.ID]; ok {
		t.Fatal("expected user removed from storage")
	}
}

func TestSoftDeleteRestoreCycle(t *testing.T) {
	svc, _ := newUserService()
	u, err := svc.Register(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.SoftDelete(context.Background(), u.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.SoftDelete(context.Background(), u.ID); !platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict) {
		t.Fatalf("expected conflict on double delete, got %v", err)
	}
	if err := svc.UndoSoftDelete(context.Background(), u.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("restored account must authenticate, got %v", err)
	}
}

func TestAdminAccountProtections(t *testing.T) {
	svc, _ := newUserService()
	if err := svc.EnsureAdmin(context.Background(), "root", "pw"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	admin, err := svc.Authenticate(context.Background(), "root", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !admin.IsAdmin {
		t.Fatal("expected admin flag")
	}

	if err := svc.SoftDelete(context.Background(), admin.ID); !platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden) {
		t.Fatalf("expected forbidden for admin delete, got %v", err)
	}
	if err := svc.Ban(context.Background(), admin.ID); !platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden) {
		t.Fatalf("expected forbidden for admin ban, got %v", err)
	}

	// Idempotent bootstrap.
	if err := svc.EnsureAdmin(context.Background(), "root", "other"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "root", "pw"); err != nil {
		t.Fatalf("existing admin password must survive bootstrap, got %v", err)
	}
}
