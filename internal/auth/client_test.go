package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/recipe-share/backend/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub *auth.Subscription) auth.StateChange {
	t.Helper()
	select {
	case change, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		return change
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for auth state change")
		return auth.StateChange{}
	}
}

func TestClient_SignInAndOutPublishEvents(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	_, err := svc.SignUp(ctx, "cook@example.com", "hunter22")
	require.NoError(t, err)

	client := auth.NewClient(svc)
	defer client.Close()

	sub, err := client.OnAuthStateChange(ctx)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	// Publishing blocks until the subscriber has taken the event.
	done := make(chan error, 1)
	go func() {
		_, err := client.SignInWithPassword(ctx, "cook@example.com", "hunter22")
		done <- err
	}()

	change := receive(t, sub)
	require.NoError(t, <-done)
	assert.Equal(t, auth.EventSignedIn, change.Event)
	require.NotNil(t, change.Session)
	assert.Equal(t, "cook@example.com", change.Session.Email)

	sess, err := client.GetSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, sess)

	go func() { done <- client.SignOut(ctx) }()
	change = receive(t, sub)
	require.NoError(t, <-done)
	assert.Equal(t, auth.EventSignedOut, change.Event)
	assert.Nil(t, change.Session)

	sess, err = client.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestClient_FailedSignInKeepsState(t *testing.T) {
	svc := newService(t)
	client := auth.NewClient(svc)
	defer client.Close()

	_, err := client.SignInWithPassword(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	sess, err := client.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestClient_GetSessionRefreshesNearExpiry(t *testing.T) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := newService(t, auth.WithClock(clk.Now))
	ctx := context.Background()
	_, err := svc.SignUp(ctx, "cook@example.com", "hunter22")
	require.NoError(t, err)

	client := auth.NewClient(svc)
	defer client.Close()
	first, err := client.SignInWithPassword(ctx, "cook@example.com", "hunter22")
	require.NoError(t, err)

	sub, err := client.OnAuthStateChange(ctx)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	clk.Advance(59*time.Minute + 30*time.Second)

	type result struct {
		sess *auth.Session
		err  error
	}
	done := make(chan result, 1)
	go func() {
		s, err := client.GetSession(ctx)
		done <- result{s, err}
	}()

	change := receive(t, sub)
	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, auth.EventTokenRefreshed, change.Event)
	assert.True(t, res.sess.ExpiresAt.After(first.ExpiresAt))
}

func TestClient_UnsubscribeClosesStream(t *testing.T) {
	client := auth.NewClient(newService(t))
	defer client.Close()

	sub, err := client.OnAuthStateChange(context.Background())
	require.NoError(t, err)

	sub.Unsubscribe()
	sub.Unsubscribe()

	select {
	case _, ok := <-sub.C:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("stream not closed after unsubscribe")
	}

	// No subscribers left: publishing must not block.
	require.NoError(t, client.SignOut(context.Background()))
}
