package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/vlehub/user-service/internal/domain"
)

func TestRefresh_Empty_Invalid(t *testing.T) {
	t.Parallel()

	svc, _, _, _, _, _, _ := newSvcForTest(t)

	_, _, err := svc.Refresh(context.Background(), "")
	if err == nil {
		t.Fatalf("expected error")
	}
	requireDomainCode(t, err, "refresh_token_invalid")
}

func TestRefresh_UnknownToken_Invalid(t *testing.T) {
	t.Parallel()

	svc, _, _, _, _, _, _ := newSvcForTest(t)

	_, _, err := svc.Refresh(context.Background(), "nope")
	if err == nil {
		t.Fatalf("expected error")
	}
	requireDomainCode(t, err, "refresh_token_invalid")
}

func TestRefresh_RotatesToken_OldTokenSingleUse(t *testing.T) {
	t.Parallel()

	svc, users, _, _, sessions, _, _ := newSvcForTest(t)
	users.put(domain.User{ID: "u1", Email: "a@b.com", IsActive: true})

	old, err := sessions.CreateRefreshToken(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	toks, u, err := svc.Refresh(context.Background(), old)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if u.ID != "u1" {
		t.Fatalf("expected u1, got %q", u.ID)
	}
	if toks.RefreshToken == "" || toks.RefreshToken == old {
		t.Fatalf("expected a new refresh token, got %q", toks.RefreshToken)
	}
	if toks.AccessToken == "" {
		t.Fatalf("expected access token")
	}

	// Presenting the consumed token again must fail.
	_, _, err = svc.Refresh(context.Background(), old)
	if err == nil {
		t.Fatalf("expected rotated-out token to be rejected")
	}
	requireDomainCode(t, err, "refresh_token_invalid")
}

func TestRefresh_InactiveUser_Invalid(t *testing.T) {
	t.Parallel()

	svc, users, _, _, sessions, _, _ := newSvcForTest(t)
	users.put(domain.User{ID: "u1", Email: "a@b.com", IsActive: false})

	tok, _ := sessions.CreateRefreshToken(context.Background(), "u1", 0)

	_, _, err := svc.Refresh(context.Background(), tok)
	if err == nil {
		t.Fatalf("expected error")
	}
	requireDomainCode(t, err, "refresh_token_invalid")
}

func TestLogout_EmptyAndUnknown_Idempotent(t *testing.T) {
	t.Parallel()

	svc, _, _, _, _, _, _ := newSvcForTest(t)

	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("empty logout: %v", err)
	}
	if err := svc.Logout(context.Background(), "never-issued"); err != nil {
		t.Fatalf("unknown logout: %v", err)
	}
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	t.Parallel()

	svc, _, _, _, sessions, _, _ := newSvcForTest(t)

	tok, _ := sessions.CreateRefreshToken(context.Background(), "u1", 0)
	if err := svc.Logout(context.Background(), tok); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := sessions.byToken[tok]; ok {
		t.Fatalf("expected token revoked")
	}
}

func TestPasswordResetRequest_UnknownEmail_SilentSuccess(t *testing.T) {
	t.Parallel()

	svc, _, _, _, _, ott, notifier := newSvcForTest(t)

	if err := svc.PasswordResetRequest(context.Background(), "ghost@example.com"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if len(notifier.all()) != 0 {
		t.Fatalf("expected no notification for unknown email")
	}
	if len(ott.data[TokenPasswordReset]) != 0 {
		t.Fatalf("expected no reset token stored")
	}
}

func TestPasswordResetRequest_KnownEmail_StoresTokenAndNotifies(t *testing.T) {
	t.Parallel()

	svc, users, _, _, _, ott, notifier := newSvcForTest(t)
	users.put(domain.User{ID: "u1", Email: "a@b.com", IsActive: true})

	if err := svc.PasswordResetRequest(context.Background(), "A@B.com"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	sent := notifier.all()
	if len(sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(sent))
	}
	if sent[0].Kind != NotifyPasswordReset || sent[0].UserID != "u1" || sent[0].Token == "" {
		t.Fatalf("unexpected notification %+v", sent[0])
	}

	uid, err := ott.Consume(context.Background(), TokenPasswordReset, sent[0].Token)
	if err != nil || uid != "u1" {
		t.Fatalf("expected stored reset token for u1, got uid=%q err=%v", uid, err)
	}
}

func TestPasswordResetRequest_InfraFailure_StillSilent(t *testing.T) {
	t.Parallel()

	svc, users, _, _, _, ott, _ := newSvcForTest(t)
	users.put(domain.User{ID: "u1", Email: "a@b.com", IsActive: true})
	ott.saveErr = errors.New("redis down")

	if err := svc.PasswordResetRequest(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
