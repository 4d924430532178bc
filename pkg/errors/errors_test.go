package errors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/LiamTF/hubsync/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestConfigError(t *testing.T) {
	t.Run("with component", func(t *testing.T) {
		err := &pkgerrors.ConfigError{
			Component: "credentials",
			Message:   "access token missing",
		}
		assert.Equal(t, "configuration error in credentials: access token missing", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrConfig))
	})

	t.Run("without component", func(t *testing.T) {
		err := &pkgerrors.ConfigError{Message: "bad setup"}
		assert.Equal(t, "configuration error: bad setup", err.Error())
		assert.True(t, pkgerrors.IsConfig(err))
	})

	t.Run("constructor and unwrap", func(t *testing.T) {
		base := errors.New("env lookup failed")
		err := pkgerrors.NewConfigError("credentials", "access token missing", base)
		assert.Equal(t, base, err.Unwrap())
		assert.True(t, pkgerrors.IsConfig(err))
	})
}

func TestFetchError(t *testing.T) {
	err := &pkgerrors.FetchError{
		Resource:   "child companies",
		Endpoint:   "https://api.hubapi.com/crm/v3/objects/companies",
		StatusCode: 403,
		Body:       `{"message":"forbidden"}`,
	}
	assert.Equal(t, `failed to fetch child companies: {"message":"forbidden"}`, err.Error())
	assert.True(t, errors.Is(err, pkgerrors.ErrRemoteFetch))
	assert.True(t, pkgerrors.IsRemoteFetch(err))
	assert.False(t, pkgerrors.IsRemoteUpdate(err))
}

func TestUpdateError(t *testing.T) {
	err := &pkgerrors.UpdateError{
		CompanyID:  "901",
		StatusCode: 400,
		Body:       "bad property",
	}
	assert.Equal(t, "failed to update parent company 901: bad property", err.Error())
	assert.True(t, pkgerrors.IsRemoteUpdate(err))
}

func TestCreateError(t *testing.T) {
	// 200 is still a failure for create: success is 201 exactly.
	err := &pkgerrors.CreateError{StatusCode: 200, Body: "ok-but-wrong-status"}
	assert.Contains(t, err.Error(), "failed to create parent company")
	assert.True(t, pkgerrors.IsRemoteCreate(err))
	assert.False(t, pkgerrors.IsRemoteFetch(err))
}

func TestAssociationError(t *testing.T) {
	err := &pkgerrors.AssociationError{
		ChildID:    "c1",
		ParentID:   "p1",
		StatusCode: 500,
		Body:       "boom",
	}
	assert.Contains(t, err.Error(), "c1")
	assert.Contains(t, err.Error(), "p1")
	assert.Contains(t, err.Error(), "500")
	assert.True(t, pkgerrors.IsRemoteAssociation(err))
}

func TestIntegrityError(t *testing.T) {
	err := &pkgerrors.IntegrityError{LocationID: "loc-1", Count: 2}
	assert.Equal(t,
		"multiple companies found with Client Company Location ID: loc-1. Expected only one or zero.",
		err.Error())
	assert.True(t, pkgerrors.IsIntegrity(err))
}

func TestPreconditionError(t *testing.T) {
	err := &pkgerrors.PreconditionError{LocationID: "loc-1"}
	assert.Contains(t, err.Error(), "loc-1")
	assert.Contains(t, err.Error(), "Cannot infer name")
	assert.True(t, pkgerrors.IsPrecondition(err))
}

func TestTransportError(t *testing.T) {
	base := errors.New("dial tcp: connection refused")
	err := pkgerrors.WrapTransport("search parent company", "https://api.hubapi.com", base)
	require.Error(t, err)

	var te *pkgerrors.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, base, te.Unwrap())
	assert.True(t, errors.Is(err, base))
	assert.Contains(t, err.Error(), "search parent company")
}

func TestWrapTransportNil(t *testing.T) {
	assert.NoError(t, pkgerrors.WrapTransport("op", "endpoint", nil))
}

func TestWrappedKindsSurviveJoin(t *testing.T) {
	base := &pkgerrors.IntegrityError{LocationID: "loc-9", Count: 3}
	wrapped := errors.Join(errors.New("reconcile failed"), base)
	assert.True(t, pkgerrors.IsIntegrity(wrapped))
}
