package auth

import (
	"testing"
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars!"

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                testSecret,
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "manufacturing-test",
	})
}

func TestIssueAndValidate(t *testing.T) {
	svc := newTestJWTService()
	actorID := uuid.New()

	token, expiresAt, err := svc.Issue(IssueInput{ActorID: actorID, Role: shared.RoleProduction, Name: "line-3"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	actor, claims, err := svc.ValidateActor(token)
	require.NoError(t, err)
	assert.Equal(t, actorID, actor.ID)
	assert.Equal(t, shared.RoleProduction, actor.Role)
	assert.Equal(t, "line-3", claims.Name)
	assert.Equal(t, "manufacturing-test", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, expiresAt.Unix(), claims.ExpiresAtTime().Unix())
}

func TestIssue_TTLOverride(t *testing.T) {
	svc := newTestJWTService()
	_, expiresAt, err := svc.Issue(IssueInput{ActorID: uuid.New(), Role: shared.RoleViewer, TTL: time.Hour})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)
}

func TestIssue_RejectsBadInput(t *testing.T) {
	svc := newTestJWTService()

	_, _, err := svc.Issue(IssueInput{Role: shared.RoleAdmin})
	assert.ErrorIs(t, err, ErrMissingSubject)

	_, _, err = svc.Issue(IssueInput{ActorID: uuid.New(), Role: shared.Role("guest")})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestValidate_Expired(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := svc.Issue(IssueInput{ActorID: uuid.New(), Role: shared.RoleAdmin})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidate_NotYetValid(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	token, _, err := svc.Issue(IssueInput{ActorID: uuid.New(), Role: shared.RoleAdmin})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrTokenNotYetValid)
}

func TestValidate_WrongSecretOrIssuer(t *testing.T) {
	svc := newTestJWTService()
	token, _, err := svc.Issue(IssueInput{ActorID: uuid.New(), Role: shared.RoleAdmin})
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "another-secret-key-at-least-32-chars", AccessTokenExpiration: time.Minute, Issuer: "manufacturing-test"})
	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	otherIssuer := NewJWTService(config.JWTConfig{Secret: testSecret, AccessTokenExpiration: time.Minute, Issuer: "someone-else"})
	_, err = otherIssuer.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Validate("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_RejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			Issuer:    "manufacturing-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		Role: "admin",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestJWTService().Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateActor_BadClaims(t *testing.T) {
	svc := newTestJWTService()
	sign := func(c *Claims) string {
		c.Issuer = "manufacturing-test"
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Minute))
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return s
	}

	_, _, err := svc.ValidateActor(sign(&Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "not-a-uuid"}, Role: "admin"}))
	assert.ErrorIs(t, err, ErrMissingSubject)

	_, _, err = svc.ValidateActor(sign(&Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()}, Role: "superuser"}))
	assert.ErrorIs(t, err, ErrInvalidRole)

	actor, _, err := svc.ValidateActor(sign(&Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()}, Role: " Fulfillment "}))
	require.NoError(t, err)
	assert.Equal(t, shared.RoleFulfillment, actor.Role)
}
