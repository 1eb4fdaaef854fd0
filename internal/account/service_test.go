package account

import (
	"context"
	"errors"
	"testing"

	"github.com/madbatter/site/internal/model"
	"github.com/madbatter/site/internal/store"
)

func testService(t *testing.T) *Service {
	t.Helper()
	return NewService(store.NewUserStore(store.NewMemoryKV()))
}

func mustCreate(t *testing.T, s *Service, params NewUserParams) *model.User {
	t.Helper()
	user, err := s.CreateUser(context.Background(), params)
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", params.Username, err)
	}
	return user
}

func TestValidateCredentials(t *testing.T) {
	ctx := context.Background()
	s := testService(t)
	mustCreate(t, s, NewUserParams{Username: "alice", Password: "s3cret", Role: model.RoleAdmin})

	user, err := s.ValidateCredentials(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("ValidateCredentials: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("returned %+v", user)
	}

	// Lookup is case-insensitive.
	if _, err := s.ValidateCredentials(ctx, "  ALICE ", "s3cret"); err != nil {
		t.Fatalf("case variant rejected: %v", err)
	}

	if _, err := s.ValidateCredentials(ctx, "alice", "wrong"); !errors.Is(err, model.ErrIncorrectPassword) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := s.ValidateCredentials(ctx, "nobody", "s3cret"); !errors.Is(err, model.ErrUnknownUser) {
		t.Fatalf("unknown user: %v", err)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	s := testService(t)
	mustCreate(t, s, NewUserParams{Username: "alice", Password: "pw"})

	_, err := s.CreateUser(ctx, NewUserParams{Username: "ALICE", Password: "pw2"})
	if !errors.Is(err, model.ErrDuplicateUsername) {
		t.Fatalf("duplicate username accepted: %v", err)
	}
}

// Uniqueness is scoped to active accounts: after a soft delete the
// username is free again, and the old record is not revived.
func TestCreateUser_ReuseAfterSoftDelete(t *testing.T) {
	ctx := context.Background()
	s := testService(t)
	mustCreate(t, s, NewUserParams{Username: "admin", Password: "pw", Role: model.RoleAdmin})
	old := mustCreate(t, s, NewUserParams{Username: "alice", Password: "pw"})

	if err := s.DeleteUser(ctx, old.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	fresh, err := s.CreateUser(ctx, NewUserParams{Username: "alice", Password: "newpw"})
	if err != nil {
		t.Fatalf("re-registering a soft-deleted username: %v", err)
	}
	if fresh.ID == old.ID {
		t.Fatal("soft-deleted account was revived instead of created anew")
	}
}

func TestDeleteUser_LastAccount(t *testing.T) {
	ctx := context.Background()
	s := testService(t)
	only := mustCreate(t, s, NewUserParams{Username: "admin", Password: "pw", Role: model.RoleAdmin})

	if err := s.DeleteUser(ctx, only.ID); !errors.Is(err, model.ErrLastAccount) {
		t.Fatalf("deleting the last active account: %v", err)
	}

	second := mustCreate(t, s, NewUserParams{Username: "helper", Password: "pw"})
	if err := s.DeleteUser(ctx, second.ID); err != nil {
		t.Fatalf("deleting one of two accounts: %v", err)
	}

	users, err := s.Users(ctx)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 1 || users[0].ID != only.ID {
		t.Fatalf("active users after delete: %+v", users)
	}
}

func TestSecurityAnswerRecovery(t *testing.T) {
	ctx := context.Background()
	s := testService(t)
	user := mustCreate(t, s, NewUserParams{
		Username:         "alice",
		Password:         "oldpw",
		SecurityQuestion: "First pet?",
		SecurityAnswer:   "Fluffy",
	})

	if _, err := s.VerifySecurityAnswer(ctx, "nobody", "fluffy"); !errors.Is(err, model.ErrUnknownUser) {
		t.Fatalf("unknown user: %v", err)
	}
	if _, err := s.VerifySecurityAnswer(ctx, "alice", "rex"); !errors.Is(err, model.ErrWrongAnswer) {
		t.Fatalf("wrong answer: %v", err)
	}

	// Normalization: case and whitespace differences still verify.
	got, err := s.VerifySecurityAnswer(ctx, "alice", "  FLUFFY ")
	if err != nil {
		t.Fatalf("VerifySecurityAnswer: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("resolved wrong account: %+v", got)
	}

	// Recovery issues a fresh credential; the old one stops working.
	if err := s.ResetPassword(ctx, user.ID, "newpw"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if _, err := s.ValidateCredentials(ctx, "alice", "oldpw"); !errors.Is(err, model.ErrIncorrectPassword) {
		t.Fatalf("old password still valid: %v", err)
	}
	if _, err := s.ValidateCredentials(ctx, "alice", "newpw"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestUpdateSecurityQuestion(t *testing.T) {
	ctx := context.Background()
	s := testService(t)
	user := mustCreate(t, s, NewUserParams{Username: "alice", Password: "pw"})

	if err := s.UpdateSecurityQuestion(ctx, user.ID, "Favorite cake?", "carrot"); err != nil {
		t.Fatalf("UpdateSecurityQuestion: %v", err)
	}
	if _, err := s.VerifySecurityAnswer(ctx, "alice", "Carrot"); err != nil {
		t.Fatalf("updated answer rejected: %v", err)
	}

	var verr *model.ValidationError
	err := s.UpdateSecurityQuestion(ctx, user.ID, "", "carrot")
	if !errors.As(err, &verr) {
		t.Fatalf("empty question accepted: %v", err)
	}
}

func TestCreateUser_Validation(t *testing.T) {
	ctx := context.Background()
	s := testService(t)

	var verr *model.ValidationError
	if _, err := s.CreateUser(ctx, NewUserParams{Username: "", Password: "pw"}); !errors.As(err, &verr) {
		t.Fatalf("empty username: %v", err)
	}
	if _, err := s.CreateUser(ctx, NewUserParams{Username: "x", Password: ""}); !errors.As(err, &verr) {
		t.Fatalf("empty password: %v", err)
	}
	if _, err := s.CreateUser(ctx, NewUserParams{Username: "x", Password: "pw", Role: "owner"}); !errors.As(err, &verr) {
		t.Fatalf("bad role: %v", err)
	}
}
